package model

// Candidate is one spreadsheet row after mapping and cleaning, prior to
// catalog matching. Candidates are immutable once produced by the row
// mapper; review edits happen on the derived MatchResult so RowIndex always
// traces back to the untouched source row.
//
// Numeric fields are either a successfully parsed value or nil. They are
// never NaN and never an empty-string placeholder.
type Candidate struct {
	RowIndex     int      `json:"rowIndex"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	ProductName  string   `json:"productName"`
	VariantName  string   `json:"variantName,omitempty"`
	SKU          string   `json:"sku,omitempty"`
	Size         string   `json:"size,omitempty"`
	CartonSize   *float64 `json:"cartonSize,omitempty"`
	UnitCost     *float64 `json:"unitCost,omitempty"`
	RetailPrice  *float64 `json:"retailPrice,omitempty"`
}
