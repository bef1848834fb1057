package catalog

// ProductPatch is a partial update. Scalars treat null like absent except
// FullDesc, where null clears the description. For Discount, Properties and
// Variants null deletes the rows and a value replaces them.
type ProductPatch struct {
	Name          Field[string]  `json:"name"`
	ShortDesc     Field[string]  `json:"shortDesc"`
	FullDesc      Field[string]  `json:"fullDesc"`
	MainImageID   Field[string]  `json:"mainImageId"`
	OriginalPrice Field[float64] `json:"originalPrice"`
	StockQuantity Field[int]     `json:"stockQuantity"`
	IsFeatured    Field[bool]    `json:"isFeatured"`

	Discount   Field[DiscountInput]  `json:"discount"`
	Properties Field[[]Property]     `json:"properties"`
	Variants   Field[[]VariantPatch] `json:"variants"`
}

type DiscountInput struct {
	Percentage float64 `json:"percentage"`
	// DiscountPrice is derived from Percentage when omitted.
	DiscountPrice *float64 `json:"discountPrice"`
}

// VariantPatch updates the variant with ID, or creates one when ID is nil.
type VariantPatch struct {
	ID             *int64    `json:"id"`
	Name           *string   `json:"name"`
	PropertyValues *[]string `json:"propertyValues"`
	ImageID        *string   `json:"imageId"`
}

// CreateProduct is the full payload of a new product.
type CreateProduct struct {
	Name          string         `json:"name"`
	ShortDesc     string         `json:"shortDesc"`
	FullDesc      *string        `json:"fullDesc"`
	MainImageID   string         `json:"mainImageId"`
	OriginalPrice float64        `json:"originalPrice"`
	StockQuantity int            `json:"stockQuantity"`
	IsFeatured    bool           `json:"isFeatured"`
	Discount      *DiscountInput `json:"discount"`
	Properties    []Property     `json:"properties"`
	Variants      []VariantPatch `json:"variants"`
}
