package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memoryRepository behaves like the mongo repository over a map.
type memoryRepository struct {
	mu        sync.Mutex
	records   map[string]Record
	findErr   error
	deleteErr error
}

func newMemoryRepository(ids ...string) *memoryRepository {
	r := &memoryRepository{records: map[string]Record{}}
	for _, id := range ids {
		r.records[id] = Record{PublicID: id}
	}
	return r
}

func (r *memoryRepository) Find(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return Record{}, r.findErr
	}
	rec, ok := r.records[id]
	if !ok {
		return Record{}, fmt.Errorf("media %s: %w", id, persistence.ErrEntityNotFound)
	}
	return rec, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.records, id)
	return nil
}

type recordingStorage struct {
	deleted []string
	err     error
}

func (s *recordingStorage) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func TestMediaRemovedHandler_Process(t *testing.T) {
	t.Run("deletes object then record", func(t *testing.T) {
		repo := newMemoryRepository("m1", "m2", "keep")
		storage := &recordingStorage{}
		h := newMediaRemovedHandler(repo, storage, zap.NewNop())

		err := h.Process(context.Background(), events.MediaRemoved{ID: 1, MediaIDs: []string{"m1", "m2"}})

		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2"}, storage.deleted)
		assert.Equal(t, map[string]Record{"keep": {PublicID: "keep"}}, repo.records)
	})

	t.Run("applying twice equals applying once", func(t *testing.T) {
		repo := newMemoryRepository("m1", "keep")
		storage := &recordingStorage{}
		h := newMediaRemovedHandler(repo, storage, zap.NewNop())
		event := events.MediaRemoved{ID: 1, MediaIDs: []string{"m1", "unknown"}}

		require.NoError(t, h.Process(context.Background(), event))
		afterFirst := map[string]Record{}
		for k, v := range repo.records {
			afterFirst[k] = v
		}
		require.NoError(t, h.Process(context.Background(), event))

		assert.Equal(t, afterFirst, repo.records)
		assert.Equal(t, []string{"m1"}, storage.deleted)
	})

	t.Run("storage failure is logged and swallowed", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		repo := newMemoryRepository("m1")
		storage := &recordingStorage{err: errors.New("bucket unreachable")}
		h := newMediaRemovedHandler(repo, storage, zap.New(core))

		err := h.Process(context.Background(), events.MediaRemoved{ID: 1, MediaIDs: []string{"m1"}})

		require.NoError(t, err)
		assert.Empty(t, repo.records)
		assert.Equal(t, 1, logs.FilterMessage("failed to delete media object").FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("repository failure is retried", func(t *testing.T) {
		repo := newMemoryRepository("m1")
		repo.findErr = errors.New("server selection timeout")
		h := newMediaRemovedHandler(repo, &recordingStorage{}, zap.NewNop())

		err := h.Process(context.Background(), events.MediaRemoved{ID: 1, MediaIDs: []string{"m1"}})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, consumer.ErrPermanent)
	})

	t.Run("other events are skipped", func(t *testing.T) {
		h := newMediaRemovedHandler(newMemoryRepository(), &recordingStorage{}, zap.NewNop())

		err := h.Process(context.Background(), events.ProductRemoved{ID: 1})

		assert.ErrorIs(t, err, consumer.ErrSkipMessage)
	})
}
