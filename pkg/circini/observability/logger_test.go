package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCaptureLogger returns a JSON logger writing into a buffer.
func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// records decodes every JSON line in buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNilLoggerIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Nil(t, EnrichLogger(nil, "c", 0))
		LogDispatchStart(nil, "id", "T", 1)
		LogDispatchComplete(nil, "id", 1, 1, 0)
		LogHandlerSkipped(nil, "h", "T")
		LogHandlerError(nil, "h", "T", errors.New("boom"))
		LogRecord(nil, "s", "T", 1)
		LogRecordError(nil, "s", "append", errors.New("boom"))
	})
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := newCaptureLogger()

	EnrichLogger(logger, "ui", 2).Info("attached")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "ui", recs[0]["container"])
	assert.Equal(t, float64(2), recs[0]["depth"])
}

func TestDispatchLogging(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogDispatchStart(logger, "ev-1", "main.KeyDown", 3)
	LogHandlerSkipped(logger, "keyUpHandler", "main.KeyDown")
	LogHandlerError(logger, "keyDownHandler", "main.KeyDown", errors.New("boom"))
	LogDispatchComplete(logger, "ev-1", 0.5, 1, 2)

	recs := records(t, buf)
	require.Len(t, recs, 4)

	assert.Equal(t, "dispatch starting", recs[0]["msg"])
	assert.Equal(t, "ev-1", recs[0]["event_id"])
	assert.Equal(t, float64(3), recs[0]["handlers"])

	assert.Equal(t, "handler skipped", recs[1]["msg"])
	assert.Equal(t, "DEBUG", recs[1]["level"])

	assert.Equal(t, "handler failed", recs[2]["msg"])
	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "boom", recs[2]["error"])

	assert.Equal(t, "dispatch completed", recs[3]["msg"])
	assert.Equal(t, float64(1), recs[3]["matched"])
	assert.Equal(t, float64(2), recs[3]["skipped"])
}

func TestRecordLogging(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogRecord(logger, "session", "main.KeyDown", 4)
	LogRecordError(logger, "session", "append", errors.New("disk full"))

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, float64(4), recs[0]["seq"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "append", recs[1]["operation"])
}

func TestNewLogger_NonTerminalUsesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", slog.String("k", "v"))

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
	assert.Equal(t, "v", recs[0]["k"])
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), 1.0)
}
