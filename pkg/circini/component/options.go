package component

import (
	"log/slog"

	"github.com/randalmurphal/circini/pkg/circini/observability"
)

// containerConfig holds configuration for a Container.
type containerConfig struct {
	name          string
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	stopOnError   bool
	recoverPanics bool
	maxDepth      int
}

func defaultContainerConfig() containerConfig {
	return containerConfig{
		name:     "container",
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		maxDepth: 16,
	}
}

// Option configures a Container.
type Option func(*containerConfig)

// WithName sets the container name used in logs, metrics and spans.
// Default: "container"
func WithName(name string) Option {
	return func(c *containerConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger enables structured dispatch logging.
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *containerConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *containerConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *containerConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *containerConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithStopOnError stops a broadcast at the first handler error.
// Default: false (every accepting handler runs, errors are joined)
func WithStopOnError(stop bool) Option {
	return func(c *containerConfig) {
		c.stopOnError = stop
	}
}

// WithRecoverPanics converts handler panics into PanicError.
// Default: false (panics propagate to the caller)
func WithRecoverPanics(recoverPanics bool) Option {
	return func(c *containerConfig) {
		c.recoverPanics = recoverPanics
	}
}

// WithMaxDepth limits how deeply containers may nest during one dispatch.
// Default: 16
func WithMaxDepth(n int) Option {
	return func(c *containerConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}
