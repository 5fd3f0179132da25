package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one broadcast through a container.
	RecordDispatch(ctx context.Context, container, eventType string, duration time.Duration)

	// RecordHandler records a handler invocation and its error status.
	RecordHandler(ctx context.Context, handler, eventType string, err error)

	// RecordSkip records a handler that did not accept an event.
	RecordSkip(ctx context.Context, handler, eventType string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	invocations     metric.Int64Counter
	skipped         metric.Int64Counter
	handlerErrors   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("circini")

	dispatches, err := meter.Int64Counter("circini.dispatch.events",
		metric.WithDescription("Number of events broadcast by containers"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("circini.dispatch.latency_ms",
		metric.WithDescription("Broadcast latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	invocations, err := meter.Int64Counter("circini.handler.invocations",
		metric.WithDescription("Number of handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("circini.handler.skipped",
		metric.WithDescription("Number of events a handler did not accept"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("circini.handler.errors",
		metric.WithDescription("Number of handler errors"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		invocations:     invocations,
		skipped:         skipped,
		handlerErrors:   handlerErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordDispatch(ctx context.Context, container, eventType string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("container", container),
		attribute.String("event_type", eventType),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (m *otelMetrics) RecordHandler(ctx context.Context, handler, eventType string, err error) {
	attrs := metric.WithAttributes(
		attribute.String("handler", handler),
		attribute.String("event_type", eventType),
	)
	m.invocations.Add(ctx, 1, attrs)
	if err != nil {
		m.handlerErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordSkip(ctx context.Context, handler, eventType string) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("handler", handler),
		attribute.String("event_type", eventType),
	))
}
