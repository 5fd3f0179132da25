package journal_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/circini/pkg/circini/journal"
)

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s journal.Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := journal.NewMemoryStore()
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := journal.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func rec(stream, eventType, data string) journal.Record {
	return journal.Record{
		Stream:    stream,
		EventID:   "ev-" + data,
		EventType: eventType,
		Version:   1,
		Data:      []byte(data),
	}
}

func TestStore_AppendList(t *testing.T) {
	stores(t, func(t *testing.T, s journal.Store) {
		ctx := context.Background()

		seq1, err := s.Append(ctx, rec("a", "key.down", "1"))
		require.NoError(t, err)
		seq2, err := s.Append(ctx, rec("b", "key.down", "2"))
		require.NoError(t, err)
		seq3, err := s.Append(ctx, rec("a", "key.up", "3"))
		require.NoError(t, err)

		assert.Less(t, seq1, seq2)
		assert.Less(t, seq2, seq3)

		recs, err := s.List(ctx, "a", 0, 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, seq1, recs[0].Seq)
		assert.Equal(t, "key.down", recs[0].EventType)
		assert.Equal(t, "ev-1", recs[0].EventID)
		assert.Equal(t, []byte("1"), recs[0].Data)
		assert.Equal(t, "a", recs[0].Stream)
		assert.Equal(t, 1, recs[0].Version)
		assert.False(t, recs[0].Timestamp.IsZero())
		assert.Equal(t, seq3, recs[1].Seq)
	})
}

func TestStore_ListPaging(t *testing.T) {
	stores(t, func(t *testing.T, s journal.Store) {
		ctx := context.Background()
		for i := range 5 {
			_, err := s.Append(ctx, rec("s", "tick", fmt.Sprint(i)))
			require.NoError(t, err)
		}

		page, err := s.List(ctx, "s", 0, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, []byte("0"), page[0].Data)

		rest, err := s.List(ctx, "s", page[1].Seq, 0)
		require.NoError(t, err)
		require.Len(t, rest, 3)
		assert.Equal(t, []byte("2"), rest[0].Data)

		none, err := s.List(ctx, "s", rest[2].Seq, 10)
		require.NoError(t, err)
		assert.Empty(t, none)

		missing, err := s.List(ctx, "nope", 0, 0)
		require.NoError(t, err)
		assert.NotNil(t, missing, "an empty stream lists as an empty slice")
		assert.Empty(t, missing)
	})
}

func TestStore_StreamsAndDelete(t *testing.T) {
	stores(t, func(t *testing.T, s journal.Store) {
		ctx := context.Background()

		names, err := s.Streams(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		for _, stream := range []string{"b", "a", "b"} {
			_, err := s.Append(ctx, rec(stream, "tick", stream))
			require.NoError(t, err)
		}

		names, err = s.Streams(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)

		require.NoError(t, s.DeleteStream(ctx, "b"))
		require.NoError(t, s.DeleteStream(ctx, "never"))

		names, err = s.Streams(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, names)
	})
}

func TestStore_RejectsInvalidRecords(t *testing.T) {
	stores(t, func(t *testing.T, s journal.Store) {
		ctx := context.Background()

		_, err := s.Append(ctx, journal.Record{EventType: "tick"})
		assert.ErrorIs(t, err, journal.ErrInvalidRecord)

		_, err = s.Append(ctx, journal.Record{Stream: "s"})
		assert.ErrorIs(t, err, journal.ErrInvalidRecord)
	})
}

func TestStore_Closed(t *testing.T) {
	stores(t, func(t *testing.T, s journal.Store) {
		ctx := context.Background()
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, err := s.Append(ctx, rec("s", "tick", "x"))
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = s.List(ctx, "s", 0, 0)
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = s.Streams(ctx)
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		assert.ErrorIs(t, s.DeleteStream(ctx, "s"), journal.ErrStoreClosed)
	})
}

func TestStore_Concurrent(t *testing.T) {
	stores(t, func(t *testing.T, s journal.Store) {
		ctx := context.Background()

		const goroutines = 20
		const ops = 10

		var wg sync.WaitGroup
		wg.Add(goroutines)
		for i := range goroutines {
			go func(id int) {
				defer wg.Done()
				stream := fmt.Sprintf("s-%d", id%4)
				for j := range ops {
					if j%2 == 0 {
						_, _ = s.Append(ctx, rec(stream, "tick", "x"))
					} else {
						_, _ = s.List(ctx, stream, 0, 0)
					}
				}
			}(i)
		}
		wg.Wait()

		total := 0
		for i := range 4 {
			recs, err := s.List(ctx, fmt.Sprintf("s-%d", i), 0, 0)
			require.NoError(t, err)
			total += len(recs)
		}
		assert.Equal(t, goroutines*ops/2, total)
	})
}

func TestMemoryStore_CopiesData(t *testing.T) {
	s := journal.NewMemoryStore()
	ctx := context.Background()

	data := []byte("abc")
	_, err := s.Append(ctx, journal.Record{Stream: "s", EventType: "t", Data: data})
	require.NoError(t, err)
	data[0] = 'x'

	recs, err := s.List(ctx, "s", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), recs[0].Data)

	recs[0].Data[0] = 'y'
	again, err := s.List(ctx, "s", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again[0].Data)
	assert.Equal(t, 1, s.Len())
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	first, err := journal.NewSQLiteStore(path)
	require.NoError(t, err)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := rec("s", "key.down", "persistent")
	r.Timestamp = at
	seq, err := first.Append(ctx, r)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := journal.NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	recs, err := second.List(ctx, "s", 0, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, seq, recs[0].Seq)
	assert.Equal(t, []byte("persistent"), recs[0].Data)
	assert.True(t, at.Equal(recs[0].Timestamp))

	next, err := second.Append(ctx, rec("s", "key.down", "again"))
	require.NoError(t, err)
	assert.Greater(t, next, seq)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := journal.NewSQLiteStore("/nonexistent/path/events.db")
	assert.Error(t, err)
}
