package cart

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"go.uber.org/zap"
)

type Service interface {
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error)
	Items(ctx context.Context, userID string) ([]LineItem, error)
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error)
	RemoveItem(ctx context.Context, userID string, itemID int64) error
}

type service struct {
	store    Store
	products ProductReader
}

func newService(store Store, products ProductReader) Service {
	return &service{store: store, products: products}
}

func (s *service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error) {
	if userID == "" {
		return LineItem{}, ErrMissingUser
	}
	if productID <= 0 || quantity <= 0 {
		return LineItem{}, fmt.Errorf("%w: productId and quantity must be positive", ErrInvalidItem)
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return LineItem{}, err
	}

	item, err := s.store.AddItem(ctx, userID, LineItem{
		ProductID:          p.ID,
		ProductName:        p.Name,
		ProductShortDesc:   p.ShortDesc,
		ProductMainImageID: p.MainImageID,
		ProductPrice:       p.Price(),
		Quantity:           quantity,
	})
	if err != nil {
		return LineItem{}, err
	}

	logger.Get(ctx).Debug("item added to cart",
		zap.String("userId", userID),
		zap.Int64("productId", productID),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

func (s *service) Items(ctx context.Context, userID string) ([]LineItem, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.store.Items(ctx, userID)
}

func (s *service) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error) {
	if userID == "" {
		return LineItem{}, ErrMissingUser
	}
	if productID <= 0 || quantity <= 0 {
		return LineItem{}, fmt.Errorf("%w: productId and quantity must be positive", ErrInvalidItem)
	}

	item, err := s.store.UpdateQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return LineItem{}, err
	}

	logger.Get(ctx).Debug("cart item quantity updated",
		zap.String("userId", userID),
		zap.Int64("productId", productID),
		zap.Int("quantity", quantity),
	)
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, userID string, itemID int64) error {
	if userID == "" {
		return ErrMissingUser
	}
	if itemID <= 0 {
		return fmt.Errorf("%w: cartItemId must be positive", ErrInvalidItem)
	}

	if err := s.store.RemoveItem(ctx, userID, itemID); err != nil {
		return err
	}
	logger.Get(ctx).Debug("cart item removed", zap.String("userId", userID), zap.Int64("cartItemId", itemID))
	return nil
}
