package catalog

import (
	"strconv"
	"time"
)

// newAggregate validates a create payload and builds the aggregate to insert.
// IDs are left zero for the store to assign.
func newAggregate(in CreateProduct, now time.Time) (Aggregate, error) {
	errs := fieldErrors{}

	if in.Name == "" {
		errs.add("name", "is required")
	}
	if in.MainImageID == "" {
		errs.add("mainImageId", "is required")
	}
	if in.OriginalPrice < 0 {
		errs.add("originalPrice", "must not be negative")
	}
	if in.StockQuantity < 0 {
		errs.add("stockQuantity", "must not be negative")
	}

	agg := Aggregate{
		Product: Product{
			Name:          in.Name,
			ShortDesc:     in.ShortDesc,
			FullDesc:      in.FullDesc,
			MainImageID:   in.MainImageID,
			OriginalPrice: in.OriginalPrice,
			StockQuantity: in.StockQuantity,
			IsFeatured:    in.IsFeatured,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Properties: in.Properties,
	}

	if in.Discount != nil {
		if d, ok := buildDiscount(*in.Discount, in.OriginalPrice, "discount", errs); ok {
			agg.Discount = &d
		}
	}
	validateProperties(in.Properties, "properties", errs)

	for i, vp := range in.Variants {
		field := "variants[" + strconv.Itoa(i) + "]"
		if vp.ID != nil {
			errs.add(field+".id", "must not be set on create")
			continue
		}
		if v, ok := newVariant(vp, field, errs); ok {
			agg.Variants = append(agg.Variants, v)
		}
	}

	if err := errs.err(); err != nil {
		return Aggregate{}, err
	}
	return agg, nil
}
