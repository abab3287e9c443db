// Package match classifies normalized import candidates against the
// existing catalog and computes field-level diffs.
package match

import (
	"fmt"

	"github.com/summitfloors/pricebook/internal/model"
)

// Catalog is the read-only view the matcher needs. The catalog snapshot
// satisfies it; tests supply an in-memory fake. Lookups are case-insensitive
// on trimmed names and return entries ordered by ascending id, which is what
// makes the duplicate tie-break deterministic.
type Catalog interface {
	FindProductsByName(name string) []model.Product
	Variants(productID int64) []model.Variant
	FindVariants(productID int64, variantName string) []model.Variant
}

// Run classifies each candidate under the selected strategy. The result
// slice is parallel to the input: one entry per candidate, source order
// preserved. Per-row failures become error rows; they never abort the batch.
//
// Import defaults play no part in classification; they are applied to new
// catalog entries at execute time.
func Run(cat Catalog, candidates []model.Candidate, strategy model.Strategy) []model.MatchResult {
	results := make([]model.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, classify(cat, c, strategy))
	}
	return results
}

func classify(cat Catalog, c model.Candidate, strategy model.Strategy) model.MatchResult {
	r := model.MatchResult{
		Candidate:   c,
		ProductName: c.ProductName,
	}

	if c.ProductName == "" {
		return errorResult(r, "product name is required")
	}
	if c.UnitCost == nil {
		return errorResult(r, "unit cost is missing or not a number")
	}

	switch strategy {
	case model.StrategyProductLine:
		return matchProductLine(cat, c, r)
	default:
		return matchVariant(cat, c, r)
	}
}

func errorResult(r model.MatchResult, msg string) model.MatchResult {
	r.Status = model.StatusError
	r.Message = msg
	r.Skipped = true
	return r
}

// matchVariant implements the variant_match strategy: product name and
// variant name must both match for the row to touch an existing variant.
func matchVariant(cat Catalog, c model.Candidate, r model.MatchResult) model.MatchResult {
	products := cat.FindProductsByName(c.ProductName)
	if len(products) == 0 {
		r.Status = model.StatusNew
		return r
	}

	product := products[0]
	r.ProductID = product.ID
	if len(products) > 1 {
		r.Message = ambiguousMessage("products", c.ProductName, len(products), product.ID)
	}

	variants := cat.FindVariants(product.ID, c.VariantName)
	if len(variants) == 0 {
		// Existing line, new color/size under it.
		r.Status = model.StatusNew
		return r
	}

	variant := variants[0]
	if len(variants) > 1 {
		r.Message = joinMessages(r.Message,
			ambiguousMessage("variants", c.VariantName, len(variants), variant.ID))
	}

	change := Diff(c, variant)
	r.AffectedVariants = []model.VariantChange{change}
	if len(change.Changes) == 0 {
		r.Status = model.StatusMatch
	} else {
		r.Status = model.StatusUpdate
	}
	return r
}

// matchProductLine implements the product_line_match strategy: match on
// product name only and push pricing to every variant under the line.
func matchProductLine(cat Catalog, c model.Candidate, r model.MatchResult) model.MatchResult {
	products := cat.FindProductsByName(c.ProductName)
	if len(products) == 0 {
		r.Status = model.StatusNew
		return r
	}

	product := products[0]
	r.ProductID = product.ID
	if len(products) > 1 {
		r.Message = ambiguousMessage("products", c.ProductName, len(products), product.ID)
	}

	variants := cat.Variants(product.ID)
	if len(variants) == 0 {
		// A line with no variants yet; the row creates the first one.
		r.Status = model.StatusNew
		return r
	}

	var changed, unchanged []model.VariantChange
	for _, v := range variants {
		change := DiffPricing(c, v)
		if len(change.Changes) > 0 {
			changed = append(changed, change)
		} else {
			unchanged = append(unchanged, change)
		}
	}

	if len(changed) > 0 {
		r.Status = model.StatusUpdate
		r.AffectedVariants = changed
	} else {
		r.Status = model.StatusMatch
		r.AffectedVariants = unchanged
	}
	return r
}

// ambiguousMessage is the soft warning surfaced when duplicate catalog data
// satisfies the match predicate. The lowest id wins; the row still proceeds.
func ambiguousMessage(kind, name string, n int, chosen int64) string {
	return fmt.Sprintf("%d %s named %q in catalog; matched lowest id %d", n, kind, name, chosen)
}

func joinMessages(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
