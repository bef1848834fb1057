package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discounted(price, discount float64) Product {
	p := Product{ID: 7, Name: "Lamp", ShortDesc: "desk lamp", MainImageID: "main", OriginalPrice: price}
	p.Discount = &struct {
		DiscountPrice float64 `json:"discountPrice"`
	}{DiscountPrice: discount}
	return p
}

func TestProduct_Price(t *testing.T) {
	assert.Equal(t, 180.0, discounted(200, 20).Price())
	assert.Equal(t, 50.0, Product{OriginalPrice: 50}.Price())
}

func TestService_AddItem(t *testing.T) {
	t.Run("snapshots product at discounted price", func(t *testing.T) {
		store := &mockStore{}
		store.On("AddItem", mock.Anything, "alice", LineItem{
			ProductID:          7,
			ProductName:        "Lamp",
			ProductShortDesc:   "desk lamp",
			ProductMainImageID: "main",
			ProductPrice:       180,
			Quantity:           2,
		}).Return(LineItem{ID: 1, ProductID: 7, Quantity: 2}, nil)
		s := newService(store, stubProducts{product: discounted(200, 20)})

		item, err := s.AddItem(context.Background(), "alice", 7, 2)

		require.NoError(t, err)
		assert.Equal(t, int64(1), item.ID)
		store.AssertExpectations(t)
	})

	t.Run("input errors", func(t *testing.T) {
		s := newService(&mockStore{}, stubProducts{})

		_, err := s.AddItem(context.Background(), "", 7, 1)
		assert.ErrorIs(t, err, ErrMissingUser)

		_, err = s.AddItem(context.Background(), "alice", 7, 0)
		assert.ErrorIs(t, err, ErrInvalidItem)
	})

	t.Run("catalog error is returned unchanged", func(t *testing.T) {
		store := &mockStore{}
		s := newService(store, stubProducts{err: ErrProductNotFound})

		_, err := s.AddItem(context.Background(), "alice", 7, 1)

		assert.ErrorIs(t, err, ErrProductNotFound)
		store.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Items(t *testing.T) {
	store := &mockStore{}
	store.On("Items", mock.Anything, "alice").Return(nil, errors.New("db down"))
	s := newService(store, stubProducts{})

	_, err := s.Items(context.Background(), "alice")
	assert.Error(t, err)

	_, err = s.Items(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestService_UpdateQuantity(t *testing.T) {
	t.Run("sets quantity", func(t *testing.T) {
		store := &mockStore{}
		store.On("UpdateQuantity", mock.Anything, "alice", int64(7), 5).Return(LineItem{ID: 1, ProductID: 7, Quantity: 5}, nil)
		s := newService(store, stubProducts{})

		item, err := s.UpdateQuantity(context.Background(), "alice", 7, 5)

		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		store.AssertExpectations(t)
	})

	t.Run("input errors", func(t *testing.T) {
		store := &mockStore{}
		s := newService(store, stubProducts{})

		_, err := s.UpdateQuantity(context.Background(), "", 7, 1)
		assert.ErrorIs(t, err, ErrMissingUser)

		_, err = s.UpdateQuantity(context.Background(), "alice", 7, 0)
		assert.ErrorIs(t, err, ErrInvalidItem)

		store.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("item not in cart", func(t *testing.T) {
		store := &mockStore{}
		store.On("UpdateQuantity", mock.Anything, "alice", int64(7), 2).Return(LineItem{}, ErrItemNotFound)
		s := newService(store, stubProducts{})

		_, err := s.UpdateQuantity(context.Background(), "alice", 7, 2)

		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestService_RemoveItem(t *testing.T) {
	t.Run("removes item", func(t *testing.T) {
		store := &mockStore{}
		store.On("RemoveItem", mock.Anything, "alice", int64(3)).Return(nil)
		s := newService(store, stubProducts{})

		require.NoError(t, s.RemoveItem(context.Background(), "alice", 3))
		store.AssertExpectations(t)
	})

	t.Run("input errors", func(t *testing.T) {
		s := newService(&mockStore{}, stubProducts{})

		assert.ErrorIs(t, s.RemoveItem(context.Background(), "", 3), ErrMissingUser)
		assert.ErrorIs(t, s.RemoveItem(context.Background(), "alice", 0), ErrInvalidItem)
	})
}
