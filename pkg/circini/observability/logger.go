// Package observability provides logging, metrics and tracing for circini
// dispatch.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// NewLogger returns a logger writing to w at the given level.
// Terminals get slog's text format, everything else gets JSON.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// EnrichLogger adds container context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "ui", 1)
//	enriched.Info("attached") // includes container and depth
func EnrichLogger(logger *slog.Logger, container string, depth int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("container", container),
		slog.Int("depth", depth),
	)
}

// LogDispatchStart logs the start of an event broadcast.
func LogDispatchStart(logger *slog.Logger, eventID, eventType string, handlers int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch starting",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.Int("handlers", handlers),
	)
}

// LogDispatchComplete logs a finished broadcast.
func LogDispatchComplete(logger *slog.Logger, eventID string, durationMs float64, matched, skipped int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch completed",
		slog.String("event_id", eventID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("matched", matched),
		slog.Int("skipped", skipped),
	)
}

// LogHandlerSkipped logs a handler whose event type did not match.
func LogHandlerSkipped(logger *slog.Logger, handler, eventType string) {
	if logger == nil {
		return
	}
	logger.Debug("handler skipped",
		slog.String("handler", handler),
		slog.String("event_type", eventType),
	)
}

// LogHandlerError logs a handler failure.
func LogHandlerError(logger *slog.Logger, handler, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("handler", handler),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogRecord logs an event written to a journal.
func LogRecord(logger *slog.Logger, stream, eventType string, seq int64) {
	if logger == nil {
		return
	}
	logger.Debug("event recorded",
		slog.String("stream", stream),
		slog.String("event_type", eventType),
		slog.Int64("seq", seq),
	)
}

// LogRecordError logs a journal failure (non-fatal).
func LogRecordError(logger *slog.Logger, stream, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal failed",
		slog.String("stream", stream),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
