package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	// AddItem creates the user's cart on first use. Adding a product that is
	// already in the cart increases its quantity and keeps the first snapshot.
	AddItem(ctx context.Context, userID string, item LineItem) (LineItem, error)
	Items(ctx context.Context, userID string) ([]LineItem, error)
	// UpdateQuantity sets the quantity of a product already in the user's cart.
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error)
	// RemoveItem deletes one line item of the user's cart.
	RemoveItem(ctx context.Context, userID string, itemID int64) error
	// DeleteByProduct removes the product from every cart and reports how
	// many line items it removed.
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
}

type sqlStore struct {
	db *sqlx.DB
}

func newStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

const (
	upsertCartQuery = `
        INSERT INTO carts (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING id`

	upsertItemQuery = `
        INSERT INTO cart_items (cart_id, product_id, product_name, product_short_desc,
                                product_main_image_id, product_price, quantity)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
        RETURNING id, product_id, product_name, product_short_desc, product_main_image_id,
                  product_price, quantity, created_at`

	itemsQuery = `
        SELECT i.id, i.product_id, i.product_name, i.product_short_desc, i.product_main_image_id,
               i.product_price, i.quantity, i.created_at
        FROM cart_items i
        JOIN carts c ON c.id = i.cart_id
        WHERE c.user_id = $1
        ORDER BY i.created_at, i.id`

	updateQuantityQuery = `
        UPDATE cart_items i SET quantity = $3
        FROM carts c
        WHERE c.id = i.cart_id AND c.user_id = $1 AND i.product_id = $2
        RETURNING i.id, i.product_id, i.product_name, i.product_short_desc, i.product_main_image_id,
                  i.product_price, i.quantity, i.created_at`

	removeItemQuery = `
        DELETE FROM cart_items i
        USING carts c
        WHERE c.id = i.cart_id AND c.user_id = $1 AND i.id = $2`

	deleteByProductQuery = `DELETE FROM cart_items WHERE product_id = $1`
)

func (s *sqlStore) AddItem(ctx context.Context, userID string, item LineItem) (LineItem, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cartID int64
	if err := tx.GetContext(ctx, &cartID, upsertCartQuery, userID); err != nil {
		return LineItem{}, fmt.Errorf("failed to upsert cart: %w", err)
	}

	var saved LineItem
	err = tx.GetContext(ctx, &saved, upsertItemQuery,
		cartID, item.ProductID, item.ProductName, item.ProductShortDesc,
		item.ProductMainImageID, item.ProductPrice, item.Quantity)
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return LineItem{}, fmt.Errorf("failed to commit cart item: %w", err)
	}
	return saved, nil
}

func (s *sqlStore) Items(ctx context.Context, userID string) ([]LineItem, error) {
	items := []LineItem{}
	if err := s.db.SelectContext(ctx, &items, itemsQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (s *sqlStore) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error) {
	var item LineItem
	err := s.db.GetContext(ctx, &item, updateQuantityQuery, userID, productID, quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return LineItem{}, fmt.Errorf("%w: product %d", ErrItemNotFound, productID)
	}
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

func (s *sqlStore) RemoveItem(ctx context.Context, userID string, itemID int64) error {
	res, err := s.db.ExecContext(ctx, removeItemQuery, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item %d: %w", itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count removed cart items: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: item %d", ErrItemNotFound, itemID)
	}
	return nil
}

func (s *sqlStore) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteByProductQuery, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart items of product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted cart items: %w", err)
	}
	return n, nil
}
