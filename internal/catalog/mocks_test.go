package catalog

import (
	"context"
	"sync"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/outbox"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context, id int64) (Aggregate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Aggregate), args.Error(1)
}

func (m *mockStore) List(ctx context.Context) ([]Summary, error) {
	args := m.Called(ctx)
	var products []Summary
	if v := args.Get(0); v != nil {
		products = v.([]Summary)
	}
	return products, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, agg Aggregate) (Aggregate, error) {
	args := m.Called(ctx, agg)
	return args.Get(0).(Aggregate), args.Error(1)
}

func (m *mockStore) Commit(ctx context.Context, id int64, ws WriteSet) (Aggregate, error) {
	args := m.Called(ctx, id, ws)
	return args.Get(0).(Aggregate), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id int64) (Aggregate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Aggregate), args.Error(1)
}

func (m *mockStore) ReferencedMediaIDs(ctx context.Context, ids []string, excludeProductID int64) ([]string, error) {
	args := m.Called(ctx, ids, excludeProductID)
	var referenced []string
	if v := args.Get(0); v != nil {
		referenced = v.([]string)
	}
	return referenced, args.Error(1)
}

// passThroughTx runs fn directly and counts calls.
type passThroughTx struct {
	calls int
}

func (tx *passThroughTx) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	tx.calls++
	return fn(ctx)
}

type mockPublisher struct {
	mu        sync.Mutex
	published []events.Event
	sent      int
	err       error
	sendErr   error
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) (outbox.SendFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.published = append(m.published, e)
	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.sent++
		return m.sendErr
	}, nil
}

type mockOutbox struct {
	messages []outbox.Message
	err      error
}

func (m *mockOutbox) Create(_ context.Context, msg outbox.Message) (outbox.SendFunc, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.messages = append(m.messages, msg)
	return func(context.Context) error { return nil }, nil
}
