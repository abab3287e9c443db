package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/summitfloors/pricebook/internal/model"
)

func TestDiff_AllFieldsChanged(t *testing.T) {
	carton := 24.0
	retail := 6.50
	c := model.Candidate{
		ProductName: "Oak Plank",
		UnitCost:    fptr(3.45),
		Size:        "7in",
		CartonSize:  fptr(30),
		RetailPrice: fptr(7.25),
	}
	v := model.Variant{ID: 10, UnitCost: 3.20, Size: "5in", CartonSize: &carton, RetailPrice: &retail}

	ch := Diff(c, v)
	assert.Equal(t, int64(10), ch.VariantID)
	assert.Equal(t, 3.20, ch.OldCost)
	assert.Equal(t, []string{"Cost", "Size", "Carton Size", "Retail Price"}, ch.Changes)
}

func TestDiff_UnsuppliedFieldsNeverChange(t *testing.T) {
	carton := 24.0
	c := model.Candidate{ProductName: "Oak Plank", UnitCost: fptr(3.20)}
	v := model.Variant{ID: 10, UnitCost: 3.20, Size: "5in", CartonSize: &carton}

	ch := Diff(c, v)
	assert.Empty(t, ch.Changes)
}

func TestDiff_SizeComparisonIgnoresCaseAndStoredPadding(t *testing.T) {
	c := model.Candidate{ProductName: "Oak Plank", UnitCost: fptr(3.20), Size: "5IN"}
	v := model.Variant{ID: 10, UnitCost: 3.20, Size: " 5in "}

	ch := Diff(c, v)
	assert.Empty(t, ch.Changes)
}

func TestDiff_CartonAgainstUnsetStoredValue(t *testing.T) {
	c := model.Candidate{ProductName: "Oak Plank", UnitCost: fptr(3.20), CartonSize: fptr(24)}
	v := model.Variant{ID: 10, UnitCost: 3.20}

	ch := Diff(c, v)
	assert.Equal(t, []string{"Carton Size"}, ch.Changes)
}

func TestDiffPricing_IgnoresSizeAndCarton(t *testing.T) {
	c := model.Candidate{
		ProductName: "Oak Plank",
		UnitCost:    fptr(3.20),
		Size:        "7in",
		CartonSize:  fptr(30),
	}
	v := model.Variant{ID: 10, UnitCost: 3.20, Size: "5in"}

	ch := DiffPricing(c, v)
	assert.Empty(t, ch.Changes)
}

func TestDiffPricing_CostChange(t *testing.T) {
	c := model.Candidate{ProductName: "Oak Plank", UnitCost: fptr(4.00)}
	v := model.Variant{ID: 10, UnitCost: 3.20}

	ch := DiffPricing(c, v)
	assert.Equal(t, []string{"Cost"}, ch.Changes)
	assert.Equal(t, 3.20, ch.OldCost)
}
