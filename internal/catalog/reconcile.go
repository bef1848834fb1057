package catalog

import (
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"
)

type DiscountOp int

const (
	DiscountKeep DiscountOp = iota
	DiscountUpsert
	DiscountDelete
)

// WriteSet is everything one update writes. It is computed up front so an
// invalid patch never reaches the store.
type WriteSet struct {
	Product Product

	DiscountOp DiscountOp
	Discount   Discount

	ReplaceProperties bool
	Properties        []Property

	// VariantCreates have no ID yet; the store assigns one.
	VariantCreates []Variant
	VariantUpdates []Variant
	VariantDeletes []int64
}

// Changed reports whether anything besides the base row is written.
func (ws WriteSet) Changed() bool {
	return ws.DiscountOp != DiscountKeep || ws.ReplaceProperties ||
		len(ws.VariantCreates) > 0 || len(ws.VariantUpdates) > 0 || len(ws.VariantDeletes) > 0
}

// Apply returns the aggregate the write set produces from existing, with
// created variants carrying a zero ID.
func (ws WriteSet) Apply(existing Aggregate) Aggregate {
	result := Aggregate{
		Product:    ws.Product,
		Discount:   existing.Discount,
		Properties: existing.Properties,
	}

	switch ws.DiscountOp {
	case DiscountUpsert:
		d := ws.Discount
		result.Discount = &d
	case DiscountDelete:
		result.Discount = nil
	}
	if ws.ReplaceProperties {
		result.Properties = ws.Properties
	}

	updates := lo.KeyBy(ws.VariantUpdates, func(v Variant) int64 { return v.ID })
	for _, v := range existing.Variants {
		if slices.Contains(ws.VariantDeletes, v.ID) {
			continue
		}
		if u, ok := updates[v.ID]; ok {
			v = u
		}
		result.Variants = append(result.Variants, v)
	}
	result.Variants = append(result.Variants, ws.VariantCreates...)
	return result
}

// Reconcile computes the writes that move existing to the state patch asks
// for, and the media ids the result no longer references.
func Reconcile(existing Aggregate, patch ProductPatch, now time.Time) (WriteSet, []string, error) {
	errs := fieldErrors{}
	ws := WriteSet{Product: patchProduct(existing.Product, patch, errs)}
	ws.Product.UpdatedAt = now

	var candidates []string
	if img, ok := patch.MainImageID.Get(); ok && img != existing.MainImageID && existing.MainImageID != "" {
		candidates = append(candidates, existing.MainImageID)
	}

	reconcileDiscount(&ws, existing, patch.Discount, errs)

	if patch.Properties.IsNull() {
		ws.ReplaceProperties = len(existing.Properties) > 0
	} else if props, ok := patch.Properties.Get(); ok {
		validateProperties(props, "properties", errs)
		ws.ReplaceProperties = true
		ws.Properties = props
	}

	variantOrphans := reconcileVariants(&ws, existing.Variants, patch.Variants, errs)
	candidates = append(variantOrphans, candidates...)

	if err := errs.err(); err != nil {
		return WriteSet{}, nil, err
	}

	referenced := ws.Apply(existing).MediaIDs()
	orphaned := lo.Without(lo.Uniq(candidates), referenced...)
	return ws, orphaned, nil
}

func patchProduct(p Product, patch ProductPatch, errs fieldErrors) Product {
	if v, ok := patch.Name.Get(); ok {
		if v == "" {
			errs.add("name", "must not be empty")
		}
		p.Name = v
	}
	if v, ok := patch.ShortDesc.Get(); ok {
		p.ShortDesc = v
	}
	if patch.FullDesc.IsNull() {
		p.FullDesc = nil
	} else if v, ok := patch.FullDesc.Get(); ok {
		p.FullDesc = &v
	}
	if v, ok := patch.MainImageID.Get(); ok {
		if v == "" {
			errs.add("mainImageId", "must not be empty")
		}
		p.MainImageID = v
	}
	if v, ok := patch.OriginalPrice.Get(); ok {
		if v < 0 {
			errs.add("originalPrice", "must not be negative")
		}
		p.OriginalPrice = v
	}
	if v, ok := patch.StockQuantity.Get(); ok {
		if v < 0 {
			errs.add("stockQuantity", "must not be negative")
		}
		p.StockQuantity = v
	}
	if v, ok := patch.IsFeatured.Get(); ok {
		p.IsFeatured = v
	}
	return p
}

func reconcileDiscount(ws *WriteSet, existing Aggregate, patch Field[DiscountInput], errs fieldErrors) {
	if patch.IsNull() {
		if existing.Discount != nil {
			ws.DiscountOp = DiscountDelete
		}
		return
	}
	in, ok := patch.Get()
	if !ok {
		return
	}
	d, valid := buildDiscount(in, ws.Product.OriginalPrice, "discount", errs)
	if valid {
		ws.DiscountOp = DiscountUpsert
		ws.Discount = d
	}
}

func buildDiscount(in DiscountInput, originalPrice float64, field string, errs fieldErrors) (Discount, bool) {
	if in.Percentage < 0 || in.Percentage > 100 {
		errs.add(field+".percentage", "must be between 0 and 100")
		return Discount{}, false
	}
	d := Discount{Percentage: in.Percentage, DiscountPrice: DiscountPrice(originalPrice, in.Percentage)}
	if in.DiscountPrice != nil {
		if *in.DiscountPrice < 0 {
			errs.add(field+".discountPrice", "must not be negative")
			return Discount{}, false
		}
		d.DiscountPrice = *in.DiscountPrice
	}
	return d, true
}

func validateProperties(props []Property, field string, errs fieldErrors) {
	for _, p := range props {
		if p.PropertyName == "" {
			errs.add(field, "propertyName must not be empty")
		}
	}
}

// reconcileVariants fills the variant part of ws and returns the image ids
// of variants it deletes or whose image it replaces.
func reconcileVariants(ws *WriteSet, existing []Variant, patch Field[[]VariantPatch], errs fieldErrors) []string {
	var candidates []string

	if patch.IsNull() {
		for _, v := range existing {
			ws.VariantDeletes = append(ws.VariantDeletes, v.ID)
			if v.ImageID != nil {
				candidates = append(candidates, *v.ImageID)
			}
		}
		return candidates
	}
	patches, ok := patch.Get()
	if !ok {
		return nil
	}

	byID := lo.KeyBy(existing, func(v Variant) int64 { return v.ID })
	kept := make(map[int64]struct{}, len(patches))

	for i, vp := range patches {
		field := "variants[" + strconv.Itoa(i) + "]"

		if vp.ID == nil {
			v, valid := newVariant(vp, field, errs)
			if valid {
				ws.VariantCreates = append(ws.VariantCreates, v)
			}
			continue
		}

		current, exists := byID[*vp.ID]
		if !exists {
			errs.add(field+".id", "variant %d does not belong to this product", *vp.ID)
			continue
		}
		if _, dup := kept[*vp.ID]; dup {
			errs.add(field+".id", "variant %d is listed more than once", *vp.ID)
			continue
		}
		kept[*vp.ID] = struct{}{}

		updated := current
		if vp.Name != nil {
			if *vp.Name == "" {
				errs.add(field+".name", "must not be empty")
			}
			updated.Name = *vp.Name
		}
		if vp.PropertyValues != nil {
			updated.PropertyValues = *vp.PropertyValues
		}
		if vp.ImageID != nil {
			if *vp.ImageID == "" {
				errs.add(field+".imageId", "must not be empty")
			} else if current.ImageID == nil || *current.ImageID != *vp.ImageID {
				if current.ImageID != nil {
					candidates = append(candidates, *current.ImageID)
				}
				updated.ImageID = lo.ToPtr(*vp.ImageID)
			}
		}
		ws.VariantUpdates = append(ws.VariantUpdates, updated)
	}

	for _, v := range existing {
		if _, ok := kept[v.ID]; ok {
			continue
		}
		ws.VariantDeletes = append(ws.VariantDeletes, v.ID)
		if v.ImageID != nil {
			candidates = append(candidates, *v.ImageID)
		}
	}
	return candidates
}

func newVariant(vp VariantPatch, field string, errs fieldErrors) (Variant, bool) {
	valid := true
	if vp.Name == nil || *vp.Name == "" {
		errs.add(field+".name", "is required for a new variant")
		valid = false
	}
	if vp.PropertyValues == nil {
		errs.add(field+".propertyValues", "is required for a new variant")
		valid = false
	}
	if vp.ImageID == nil || *vp.ImageID == "" {
		errs.add(field+".imageId", "is required for a new variant")
		valid = false
	}
	if !valid {
		return Variant{}, false
	}
	return Variant{
		Name:           *vp.Name,
		PropertyValues: *vp.PropertyValues,
		ImageID:        lo.ToPtr(*vp.ImageID),
	}, true
}
