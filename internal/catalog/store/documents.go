package store

import (
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/catalog"
)

const (
	productsCollection   = "products"
	discountsCollection  = "discounts"
	propertiesCollection = "product_properties"
	variantsCollection   = "variants"

	productsSequence = "products"
	variantsSequence = "variants"
)

type productDoc struct {
	ID            int64     `bson:"_id"`
	Name          string    `bson:"name"`
	ShortDesc     string    `bson:"shortDesc"`
	FullDesc      *string   `bson:"fullDesc,omitempty"`
	MainImageID   string    `bson:"mainImageId"`
	OriginalPrice float64   `bson:"originalPrice"`
	StockQuantity int       `bson:"stockQuantity"`
	IsFeatured    bool      `bson:"isFeatured"`
	Rate          float64   `bson:"rate"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// discountDoc is keyed by product id, which keeps it 0..1 per product.
type discountDoc struct {
	ProductID     int64   `bson:"_id"`
	Percentage    float64 `bson:"percentage"`
	DiscountPrice float64 `bson:"discountPrice"`
}

type propertyDoc struct {
	ProductID      int64    `bson:"productId"`
	Position       int      `bson:"position"`
	PropertyName   string   `bson:"propertyName"`
	PropertyValues []string `bson:"propertyValues"`
}

type variantDoc struct {
	ID             int64    `bson:"_id"`
	ProductID      int64    `bson:"productId"`
	Name           string   `bson:"name"`
	PropertyValues []string `bson:"propertyValues"`
	ImageID        *string  `bson:"imageId,omitempty"`
}

func toProductDoc(p catalog.Product) productDoc {
	return productDoc{
		ID:            p.ID,
		Name:          p.Name,
		ShortDesc:     p.ShortDesc,
		FullDesc:      p.FullDesc,
		MainImageID:   p.MainImageID,
		OriginalPrice: p.OriginalPrice,
		StockQuantity: p.StockQuantity,
		IsFeatured:    p.IsFeatured,
		Rate:          p.Rate,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d productDoc) toDomain() catalog.Product {
	return catalog.Product{
		ID:            d.ID,
		Name:          d.Name,
		ShortDesc:     d.ShortDesc,
		FullDesc:      d.FullDesc,
		MainImageID:   d.MainImageID,
		OriginalPrice: d.OriginalPrice,
		StockQuantity: d.StockQuantity,
		IsFeatured:    d.IsFeatured,
		Rate:          d.Rate,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func toPropertyDocs(productID int64, props []catalog.Property) []propertyDoc {
	docs := make([]propertyDoc, 0, len(props))
	for i, p := range props {
		values := p.PropertyValues
		if values == nil {
			values = []string{}
		}
		docs = append(docs, propertyDoc{
			ProductID:      productID,
			Position:       i,
			PropertyName:   p.PropertyName,
			PropertyValues: values,
		})
	}
	return docs
}

func toVariantDoc(productID int64, v catalog.Variant) variantDoc {
	values := v.PropertyValues
	if values == nil {
		values = []string{}
	}
	return variantDoc{
		ID:             v.ID,
		ProductID:      productID,
		Name:           v.Name,
		PropertyValues: values,
		ImageID:        v.ImageID,
	}
}

func (d variantDoc) toDomain() catalog.Variant {
	return catalog.Variant{
		ID:             d.ID,
		Name:           d.Name,
		PropertyValues: d.PropertyValues,
		ImageID:        d.ImageID,
	}
}
