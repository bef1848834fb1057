// Package cart keeps per-user carts whose line items snapshot product data
// taken from the catalog when the item is added.
package cart

import (
	"errors"
	"time"
)

var (
	ErrInvalidItem        = errors.New("invalid cart item")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrMissingUser        = errors.New("user id is required")
)

// LineItem is a product snapshot. It is not updated when the product changes.
type LineItem struct {
	ID                 int64     `db:"id" json:"id"`
	ProductID          int64     `db:"product_id" json:"productId"`
	ProductName        string    `db:"product_name" json:"productName"`
	ProductShortDesc   string    `db:"product_short_desc" json:"productShortDesc"`
	ProductMainImageID string    `db:"product_main_image_id" json:"productMainImageId"`
	ProductPrice       float64   `db:"product_price" json:"productPrice"`
	Quantity           int       `db:"quantity" json:"quantity"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
}

// Product is the part of the catalog product the cart copies.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ShortDesc     string  `json:"shortDesc"`
	MainImageID   string  `json:"mainImageId"`
	OriginalPrice float64 `json:"originalPrice"`
	Discount      *struct {
		DiscountPrice float64 `json:"discountPrice"`
	} `json:"discount"`
}

// Price is what the customer pays per unit.
func (p Product) Price() float64 {
	if p.Discount == nil {
		return p.OriginalPrice
	}
	return p.OriginalPrice - p.Discount.DiscountPrice
}
