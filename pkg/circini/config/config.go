package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/randalmurphal/circini/pkg/circini/component"
	"github.com/randalmurphal/circini/pkg/circini/event"
	"github.com/randalmurphal/circini/pkg/circini/journal"
	"github.com/randalmurphal/circini/pkg/circini/observability"
)

// Journal drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrInvalid indicates settings that fail validation.
var ErrInvalid = errors.New("invalid settings")

// Settings configures containers, families, logging and the journal.
//
// Values come from Default, then a YAML or JSON file, then CIRCINI_*
// environment variables.
type Settings struct {
	Container ContainerSettings `yaml:"container" json:"container"`
	Family    FamilySettings    `yaml:"family" json:"family"`
	Log       LogSettings       `yaml:"log" json:"log"`
	Telemetry TelemetrySettings `yaml:"telemetry" json:"telemetry"`
	Journal   JournalSettings   `yaml:"journal" json:"journal"`
}

// ContainerSettings configures component containers.
type ContainerSettings struct {
	Name          string `yaml:"name" json:"name" env:"CIRCINI_CONTAINER_NAME"`
	StopOnError   bool   `yaml:"stop_on_error" json:"stop_on_error" env:"CIRCINI_CONTAINER_STOP_ON_ERROR"`
	RecoverPanics bool   `yaml:"recover_panics" json:"recover_panics" env:"CIRCINI_CONTAINER_RECOVER_PANICS"`
	MaxDepth      int    `yaml:"max_depth" json:"max_depth" env:"CIRCINI_CONTAINER_MAX_DEPTH"`
}

// FamilySettings configures event families.
type FamilySettings struct {
	IndexThreshold int `yaml:"index_threshold" json:"index_threshold" env:"CIRCINI_FAMILY_INDEX_THRESHOLD"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level string `yaml:"level" json:"level" env:"CIRCINI_LOG_LEVEL"`
}

// TelemetrySettings toggles OpenTelemetry instrumentation.
type TelemetrySettings struct {
	Metrics bool `yaml:"metrics" json:"metrics" env:"CIRCINI_TELEMETRY_METRICS"`
	Tracing bool `yaml:"tracing" json:"tracing" env:"CIRCINI_TELEMETRY_TRACING"`
}

// JournalSettings selects the journal store.
type JournalSettings struct {
	Driver string `yaml:"driver" json:"driver" env:"CIRCINI_JOURNAL_DRIVER"`
	Path   string `yaml:"path" json:"path" env:"CIRCINI_JOURNAL_PATH"`
	Stream string `yaml:"stream" json:"stream" env:"CIRCINI_JOURNAL_STREAM"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Container: ContainerSettings{
			Name:     "container",
			MaxDepth: 16,
		},
		Family: FamilySettings{
			IndexThreshold: event.DefaultIndexThreshold,
		},
		Log: LogSettings{
			Level: "info",
		},
		Journal: JournalSettings{
			Driver: DriverNone,
			Stream: "default",
		},
	}
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	if s.Container.Name == "" {
		errs = append(errs, errors.New("container.name is required"))
	}
	if s.Container.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("container.max_depth must be positive, got %d", s.Container.MaxDepth))
	}
	if s.Family.IndexThreshold < 0 {
		errs = append(errs, fmt.Errorf("family.index_threshold must not be negative, got %d", s.Family.IndexThreshold))
	}
	if _, err := parseLevel(s.Log.Level); err != nil {
		errs = append(errs, err)
	}

	switch s.Journal.Driver {
	case DriverNone, DriverMemory:
	case DriverSQLite:
		if s.Journal.Path == "" {
			errs = append(errs, errors.New("journal.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("journal.driver %q is not one of none, memory, sqlite", s.Journal.Driver))
	}
	if s.Journal.Driver != DriverNone && s.Journal.Stream == "" {
		errs = append(errs, errors.New("journal.stream is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Level returns the configured log level, or info if it does not parse.
func (s Settings) Level() slog.Level {
	level, err := parseLevel(s.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger returns a logger writing to w at the configured level.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	return observability.NewLogger(w, s.Level())
}

// ContainerOptions translates the container settings to component options.
// A nil logger leaves logging disabled.
func (s Settings) ContainerOptions(logger *slog.Logger) []component.Option {
	opts := []component.Option{
		component.WithName(s.Container.Name),
		component.WithStopOnError(s.Container.StopOnError),
		component.WithRecoverPanics(s.Container.RecoverPanics),
		component.WithMaxDepth(s.Container.MaxDepth),
		component.WithMetrics(s.Telemetry.Metrics),
		component.WithTracing(s.Telemetry.Tracing),
	}
	if logger != nil {
		opts = append(opts, component.WithLogger(logger))
	}
	return opts
}

// FamilyOptions translates the family settings to event options.
func (s Settings) FamilyOptions() []event.FamilyOption {
	return []event.FamilyOption{
		event.WithIndexThreshold(s.Family.IndexThreshold),
	}
}

// OpenJournal opens the configured journal store.
// It returns nil without error when the driver is "none".
func (s Settings) OpenJournal() (journal.Store, error) {
	switch s.Journal.Driver {
	case DriverNone, "":
		return nil, nil
	case DriverMemory:
		return journal.NewMemoryStore(), nil
	case DriverSQLite:
		store, err := journal.NewSQLiteStore(s.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown journal driver %q", ErrInvalid, s.Journal.Driver)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
