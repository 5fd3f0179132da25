package journal

import (
	"context"
	"errors"
	"time"
)

// Store persists journal records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a record to the end of its stream and returns the
	// assigned sequence number. Sequence numbers increase across all
	// streams of one store.
	Append(ctx context.Context, rec Record) (int64, error)

	// List returns up to limit records of stream with Seq > afterSeq,
	// ordered by sequence. A limit <= 0 returns all remaining records.
	// Returns empty slice (not error) if nothing matches.
	List(ctx context.Context, stream string, afterSeq int64, limit int) ([]Record, error)

	// Streams returns the names of all non-empty streams, sorted.
	Streams(ctx context.Context) ([]string, error)

	// DeleteStream removes every record of stream.
	// Returns nil if the stream is empty.
	DeleteStream(ctx context.Context, stream string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one persisted event.
type Record struct {
	Seq       int64
	Stream    string
	EventID   string
	EventType string
	Version   int
	Timestamp time.Time
	Data      []byte
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")

	// ErrInvalidRecord indicates a record missing its stream or event type.
	ErrInvalidRecord = errors.New("invalid journal record")
)

func validate(rec Record) error {
	if rec.Stream == "" {
		return errors.Join(ErrInvalidRecord, errors.New("stream is required"))
	}
	if rec.EventType == "" {
		return errors.Join(ErrInvalidRecord, errors.New("event type is required"))
	}
	return nil
}
