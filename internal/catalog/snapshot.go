package catalog

import (
	"sort"
	"strings"

	"github.com/summitfloors/pricebook/internal/model"
)

// Snapshot is a read-only, in-memory view of the catalog taken at preview
// time. All lookups are case-insensitive on trimmed names and return
// entries ordered by ascending id; the matcher's lowest-id tie-break relies
// on that ordering.
type Snapshot struct {
	products       []model.Product
	productsByName map[string][]model.Product
	variantsByProd map[int64][]model.Variant
}

func newSnapshot(products []model.Product, variants []model.Variant) *Snapshot {
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	sort.Slice(variants, func(i, j int) bool { return variants[i].ID < variants[j].ID })

	s := &Snapshot{
		products:       products,
		productsByName: make(map[string][]model.Product),
		variantsByProd: make(map[int64][]model.Variant),
	}
	for _, p := range products {
		key := nameKey(p.Name)
		s.productsByName[key] = append(s.productsByName[key], p)
	}
	for _, v := range variants {
		s.variantsByProd[v.ProductID] = append(s.variantsByProd[v.ProductID], v)
	}
	return s
}

// Products returns all product lines in id order.
func (s *Snapshot) Products() []model.Product { return s.products }

// FindProductsByName returns every product whose name matches, lowest id
// first.
func (s *Snapshot) FindProductsByName(name string) []model.Product {
	return s.productsByName[nameKey(name)]
}

// Variants returns all variants under a product, lowest id first.
func (s *Snapshot) Variants(productID int64) []model.Variant {
	return s.variantsByProd[productID]
}

// FindVariants returns the variants under a product whose name matches,
// lowest id first.
func (s *Snapshot) FindVariants(productID int64, variantName string) []model.Variant {
	key := nameKey(variantName)
	var out []model.Variant
	for _, v := range s.variantsByProd[productID] {
		if nameKey(v.Name) == key {
			out = append(out, v)
		}
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
