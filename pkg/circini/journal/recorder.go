package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/circini/pkg/circini/catalog"
	"github.com/randalmurphal/circini/pkg/circini/component"
	"github.com/randalmurphal/circini/pkg/circini/event"
	"github.com/randalmurphal/circini/pkg/circini/observability"
)

// Recorder is a component of the universal event type that appends every
// event it sees to one stream of a Store.
//
// Attach it to a container next to the components whose input should be
// journaled. Events whose type is not in the catalog are skipped unless
// the recorder is strict.
type Recorder struct {
	store   Store
	catalog *catalog.Catalog
	stream  string
	logger  *slog.Logger
	strict  bool
}

var _ component.Receiver[*event.AnyEvent] = (*Recorder)(nil)

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger for recorded and skipped events.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithStrict makes unregistered event types an error instead of a skip.
func WithStrict() RecorderOption {
	return func(r *Recorder) {
		r.strict = true
	}
}

// NewRecorder creates a recorder appending to stream.
func NewRecorder(store Store, cat *catalog.Catalog, stream string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:   store,
		catalog: cat,
		stream:  stream,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stream returns the stream the recorder appends to.
func (r *Recorder) Stream() string {
	return r.stream
}

// Receives returns the universal event type.
func (r *Recorder) Receives() event.Type[*event.AnyEvent] {
	return event.Any()
}

// On encodes ev and appends it to the store. It consumes ev.
func (r *Recorder) On(ctx context.Context, ev *event.AnyEvent) error {
	defer ev.Release()

	entry, data, err := r.catalog.Encode(ev)
	if errors.Is(err, catalog.ErrUnknownEvent) && !r.strict {
		if r.logger != nil {
			r.logger.Debug("event not journaled",
				slog.String("stream", r.stream),
				slog.String("event_type", ev.TypeName()),
			)
		}
		return nil
	}
	if err != nil {
		observability.LogRecordError(r.logger, r.stream, "encode", err)
		return fmt.Errorf("record %s: %w", ev.TypeName(), err)
	}

	seq, err := r.store.Append(ctx, Record{
		Stream:    r.stream,
		EventID:   ev.ID(),
		EventType: entry.Name,
		Version:   entry.Version,
		Data:      data,
	})
	if err != nil {
		observability.LogRecordError(r.logger, r.stream, "append", err)
		return fmt.Errorf("record %s: %w", entry.Name, err)
	}

	observability.LogRecord(r.logger, r.stream, entry.Name, seq)
	return nil
}
