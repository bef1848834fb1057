// Package catalog owns the product aggregate: it validates and reconciles
// changes, commits them atomically and records the resulting events in the
// outbox within the same transaction.
package catalog

import (
	"math"
	"time"
)

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ShortDesc     string    `json:"shortDesc"`
	FullDesc      *string   `json:"fullDesc,omitempty"`
	MainImageID   string    `json:"mainImageId"`
	OriginalPrice float64   `json:"originalPrice"`
	StockQuantity int       `json:"stockQuantity"`
	IsFeatured    bool      `json:"isFeatured"`
	Rate          float64   `json:"rate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Discount struct {
	Percentage    float64 `json:"percentage"`
	DiscountPrice float64 `json:"discountPrice"`
}

type Property struct {
	PropertyName   string   `json:"propertyName"`
	PropertyValues []string `json:"propertyValues"`
}

type Variant struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	PropertyValues []string `json:"propertyValues"`
	ImageID        *string  `json:"imageId,omitempty"`
}

// Aggregate is a product with the child rows that change together with it.
type Aggregate struct {
	Product
	Discount   *Discount  `json:"discount"`
	Properties []Property `json:"properties"`
	Variants   []Variant  `json:"variants"`
}

// Summary is the list view of a product.
type Summary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ShortDesc     string    `json:"shortDesc"`
	OriginalPrice float64   `json:"originalPrice"`
	Discount      *Discount `json:"discount"`
	MainImageID   string    `json:"mainImageId"`
}

// MediaIDs returns every media id the aggregate references, main image first.
func (a Aggregate) MediaIDs() []string {
	ids := make([]string, 0, len(a.Variants)+1)
	if a.MainImageID != "" {
		ids = append(ids, a.MainImageID)
	}
	for _, v := range a.Variants {
		if v.ImageID != nil && *v.ImageID != "" {
			ids = append(ids, *v.ImageID)
		}
	}
	return ids
}

// DiscountPrice derives the discount amount from the percentage, rounded to cents.
func DiscountPrice(originalPrice, percentage float64) float64 {
	return round2(originalPrice * percentage / 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
