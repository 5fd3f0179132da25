package journal

import (
	"context"
	"fmt"

	"github.com/randalmurphal/circini/pkg/circini/catalog"
	"github.com/randalmurphal/circini/pkg/circini/component"
	"github.com/randalmurphal/circini/pkg/circini/event"
)

// DefaultReplayBatch is the number of records read per page during replay.
const DefaultReplayBatch = 256

// ReplayOption configures Replay.
type ReplayOption func(*replayConfig)

type replayConfig struct {
	afterSeq int64
	batch    int
}

// FromSeq replays only records with a sequence number greater than seq.
func FromSeq(seq int64) ReplayOption {
	return func(c *replayConfig) {
		c.afterSeq = seq
	}
}

// WithBatchSize sets the page size used to read the store.
func WithBatchSize(n int) ReplayOption {
	return func(c *replayConfig) {
		if n > 0 {
			c.batch = n
		}
	}
}

// ReplayError reports the record that failed to replay.
type ReplayError struct {
	Seq       int64
	EventType string
	Err       error
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay seq %d (%s): %v", e.Seq, e.EventType, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Replay decodes the records of stream in order and hands each one to
// target as a fresh erased event. It stops at the first decode or handler
// error and returns the sequence number of the last record delivered.
func Replay(ctx context.Context, store Store, cat *catalog.Catalog, stream string, target component.Component[*event.AnyEvent], opts ...ReplayOption) (int64, error) {
	cfg := replayConfig{batch: DefaultReplayBatch}
	for _, opt := range opts {
		opt(&cfg)
	}

	last := cfg.afterSeq
	for {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		recs, err := store.List(ctx, stream, last, cfg.batch)
		if err != nil {
			return last, fmt.Errorf("replay %s: %w", stream, err)
		}

		for _, rec := range recs {
			ev, err := cat.Decode(rec.EventType, rec.Version, rec.Data)
			if err != nil {
				return last, &ReplayError{Seq: rec.Seq, EventType: rec.EventType, Err: err}
			}
			err = target.On(ctx, ev)
			ev.Release()
			if err != nil {
				return last, &ReplayError{Seq: rec.Seq, EventType: rec.EventType, Err: err}
			}
			last = rec.Seq
		}

		if len(recs) < cfg.batch {
			return last, nil
		}
	}
}
