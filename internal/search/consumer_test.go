package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Upsert(ctx context.Context, doc Document) (bool, error) {
	args := m.Called(ctx, doc)
	return args.Bool(0), args.Error(1)
}

func (m *mockIndex) Delete(ctx context.Context, productID int64, at time.Time) error {
	return m.Called(ctx, productID, at).Error(0)
}

func TestProjectionHandler_Process(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("added", func(t *testing.T) {
		idx := &mockIndex{}
		idx.On("Upsert", ctx, Document{ProductID: 1, Name: "Lamp", ShortDesc: "Warm", UpdatedAt: &at}).Return(true, nil)
		h := newProjectionHandler(idx)

		err := h.Process(ctx, events.ProductAdded{ID: 1, Name: "Lamp", ShortDesc: "Warm", UpdatedAt: at})

		require.NoError(t, err)
		idx.AssertExpectations(t)
	})

	t.Run("updated without timestamp", func(t *testing.T) {
		idx := &mockIndex{}
		idx.On("Upsert", ctx, Document{ProductID: 1, Name: "Lamp"}).Return(true, nil)
		h := newProjectionHandler(idx)

		err := h.Process(ctx, events.ProductUpdated{ID: 1, Name: "Lamp"})

		require.NoError(t, err)
		idx.AssertExpectations(t)
	})

	t.Run("stale update is acknowledged", func(t *testing.T) {
		idx := &mockIndex{}
		idx.On("Upsert", ctx, mock.Anything).Return(false, nil)
		h := newProjectionHandler(idx)

		err := h.Process(ctx, events.ProductUpdated{ID: 1, Name: "Old", UpdatedAt: at})

		assert.NoError(t, err)
	})

	t.Run("removed", func(t *testing.T) {
		idx := &mockIndex{}
		idx.On("Delete", ctx, int64(1), at).Return(nil)
		h := newProjectionHandler(idx)

		err := h.Process(ctx, events.ProductRemoved{ID: 1, RemovedAt: at})

		require.NoError(t, err)
		idx.AssertExpectations(t)
	})

	t.Run("index failure is returned", func(t *testing.T) {
		idx := &mockIndex{}
		idx.On("Delete", ctx, int64(1), time.Time{}).Return(errors.New("cluster unavailable"))
		h := newProjectionHandler(idx)

		err := h.Process(ctx, events.ProductRemoved{ID: 1})

		assert.EqualError(t, err, "cluster unavailable")
	})

	t.Run("media events are skipped", func(t *testing.T) {
		h := newProjectionHandler(&mockIndex{})

		err := h.Process(ctx, events.MediaRemoved{ID: 1, MediaIDs: []string{"m1"}})

		assert.ErrorIs(t, err, consumer.ErrSkipMessage)
	})
}
