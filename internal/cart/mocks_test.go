package cart

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) AddItem(ctx context.Context, userID string, item LineItem) (LineItem, error) {
	args := m.Called(ctx, userID, item)
	return args.Get(0).(LineItem), args.Error(1)
}

func (m *mockStore) Items(ctx context.Context, userID string) ([]LineItem, error) {
	args := m.Called(ctx, userID)
	var items []LineItem
	if v := args.Get(0); v != nil {
		items = v.([]LineItem)
	}
	return items, args.Error(1)
}

func (m *mockStore) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(LineItem), args.Error(1)
}

func (m *mockStore) RemoveItem(ctx context.Context, userID string, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *mockStore) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

type stubProducts struct {
	product Product
	err     error
}

func (s stubProducts) GetProduct(context.Context, int64) (Product, error) {
	return s.product, s.err
}
