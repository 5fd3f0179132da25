package journal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory journal store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]Record
	seq     int64
	closed  bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]Record),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, rec Record) (int64, error) {
	if err := validate(rec); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	m.seq++
	rec.Seq = m.seq
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	// Copy data to avoid retaining caller's slice
	rec.Data = append([]byte(nil), rec.Data...)

	m.streams[rec.Stream] = append(m.streams[rec.Stream], rec)
	return rec.Seq, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, stream string, afterSeq int64, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	recs := m.streams[stream]
	start := sort.Search(len(recs), func(i int) bool { return recs[i].Seq > afterSeq })
	recs = recs[start:]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	result := make([]Record, len(recs))
	for i, rec := range recs {
		rec.Data = append([]byte(nil), rec.Data...)
		result[i] = rec
	}
	return result, nil
}

// Streams implements Store.
func (m *MemoryStore) Streams(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	names := make([]string, 0, len(m.streams))
	for name, recs := range m.streams {
		if len(recs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteStream implements Store.
func (m *MemoryStore) DeleteStream(_ context.Context, stream string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.streams, stream)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.streams = nil
	return nil
}

// Len returns the total number of records across all streams.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, recs := range m.streams {
		count += len(recs)
	}
	return count
}
