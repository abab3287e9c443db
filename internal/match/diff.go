package match

import (
	"strings"

	"github.com/summitfloors/pricebook/internal/model"
)

// Human labels for changed fields, shown in the review table.
const (
	labelCost       = "Cost"
	labelSize       = "Size"
	labelCartonSize = "Carton Size"
	labelRetail     = "Retail Price"
)

// Diff compares a candidate against one existing variant field by field.
// Only fields the candidate actually supplies participate; an unmapped
// column can never register as a change. Costs are already normalized
// decimals, so comparison is exact equality.
//
// An empty change list is authoritative: it is what reclassifies a row from
// update to match.
func Diff(c model.Candidate, v model.Variant) model.VariantChange {
	ch := model.VariantChange{VariantID: v.ID, OldCost: v.UnitCost}

	if c.UnitCost != nil && *c.UnitCost != v.UnitCost {
		ch.Changes = append(ch.Changes, labelCost)
	}
	if c.Size != "" && !strings.EqualFold(c.Size, strings.TrimSpace(v.Size)) {
		ch.Changes = append(ch.Changes, labelSize)
	}
	if c.CartonSize != nil && (v.CartonSize == nil || *c.CartonSize != *v.CartonSize) {
		ch.Changes = append(ch.Changes, labelCartonSize)
	}
	if c.RetailPrice != nil && (v.RetailPrice == nil || *c.RetailPrice != *v.RetailPrice) {
		ch.Changes = append(ch.Changes, labelRetail)
	}

	return ch
}

// DiffPricing is the product-line variant of Diff: only the bulk-applied
// pricing fields (unit cost, retail price) are compared.
func DiffPricing(c model.Candidate, v model.Variant) model.VariantChange {
	ch := model.VariantChange{VariantID: v.ID, OldCost: v.UnitCost}

	if c.UnitCost != nil && *c.UnitCost != v.UnitCost {
		ch.Changes = append(ch.Changes, labelCost)
	}
	if c.RetailPrice != nil && (v.RetailPrice == nil || *c.RetailPrice != *v.RetailPrice) {
		ch.Changes = append(ch.Changes, labelRetail)
	}

	return ch
}
