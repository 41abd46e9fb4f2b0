package cart

// Line is one purchasable unit in the cart. UnitPrice is frozen when the line is created.
type Line struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	VariantID   *string `json:"variant_id,omitempty"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	UnitPrice   int64   `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"max_quantity"`
	VendorID    string  `json:"vendor_id"`
	VendorName  string  `json:"vendor_name"`
}

// AddItemInput is the candidate passed to AddItem.
type AddItemInput struct {
	ProductID   string
	VariantID   *string
	Name        string
	Image       string
	UnitPrice   int64
	Quantity    int
	MaxQuantity int
	VendorID    string
	VendorName  string
}

// Totals are derived from the line list after every mutation.
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	TaxAmount      int64 `json:"tax_amount"`
	ShippingAmount int64 `json:"shipping_amount"`
	DiscountAmount int64 `json:"discount_amount"`
	Total          int64 `json:"total"`
	ItemCount      int   `json:"item_count"`
}

// State is a consistent read of the cart: lines, totals and the active discount code.
type State struct {
	Items        []Line `json:"items"`
	Totals       Totals `json:"totals"`
	DiscountCode string `json:"discount_code,omitempty"`
	Currency     string `json:"currency"`
}

// Snapshot is the persisted slice of cart state. Totals are recomputed on restore.
type Snapshot struct {
	Items []Line `json:"items"`
}

func (l Line) matches(productID string, variantID *string) bool {
	if l.ProductID != productID {
		return false
	}
	if l.VariantID == nil || variantID == nil {
		return l.VariantID == nil && variantID == nil
	}
	return *l.VariantID == *variantID
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, line := range lines {
		out[i] = line
		if line.VariantID != nil {
			v := *line.VariantID
			out[i].VariantID = &v
		}
	}
	return out
}
