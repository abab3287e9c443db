package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// FieldKey identifies a target catalog field a spreadsheet column can map to.
type FieldKey string

const (
	FieldManufacturer FieldKey = "manufacturer"
	FieldProductName  FieldKey = "productName"
	FieldVariantName  FieldKey = "variantName"
	FieldSKU          FieldKey = "sku"
	FieldSize         FieldKey = "size"
	FieldCartonSize   FieldKey = "cartonSize"
	FieldUnitCost     FieldKey = "unitCost"
	FieldRetailPrice  FieldKey = "retailPrice"
)

// FieldKeys lists every mappable field in display order.
var FieldKeys = []FieldKey{
	FieldManufacturer,
	FieldProductName,
	FieldVariantName,
	FieldSKU,
	FieldSize,
	FieldCartonSize,
	FieldUnitCost,
	FieldRetailPrice,
}

// Valid reports whether k is a known field key.
func (k FieldKey) Valid() bool {
	switch k {
	case FieldManufacturer, FieldProductName, FieldVariantName, FieldSKU,
		FieldSize, FieldCartonSize, FieldUnitCost, FieldRetailPrice:
		return true
	}
	return false
}

// Numeric reports whether the field carries a numeric value and therefore
// goes through currency/number coercion.
func (k FieldKey) Numeric() bool {
	switch k {
	case FieldCartonSize, FieldUnitCost, FieldRetailPrice:
		return true
	}
	return false
}

// ColumnMapping maps target fields to zero-based spreadsheet column indexes.
type ColumnMapping map[FieldKey]int

// Validate rejects unknown field keys and negative column indexes.
func (m ColumnMapping) Validate() error {
	for k, col := range m {
		if !k.Valid() {
			return eris.Errorf("model: unknown field key %q", string(k))
		}
		if col < 0 {
			return eris.Errorf("model: field %q mapped to negative column %d", string(k), col)
		}
	}
	return nil
}

// ImportDefaults carries fallback values applied only when creating new
// catalog entries from rows that omitted the data. Defaults never overwrite
// an existing catalog value during an update.
type ImportDefaults struct {
	ManufacturerID int64  `json:"manufacturerId,omitempty"`
	ProductType    string `json:"productType,omitempty"`
}

// MappingRules is the persisted payload of a mapping profile.
//
// Version 1 profiles stored the bare column mapping with no wrapper; the
// profile codec migrates those on load. Version 2 wraps the mapping together
// with the import defaults.
type MappingRules struct {
	Version  int            `json:"version"`
	Mapping  ColumnMapping  `json:"mapping"`
	Defaults ImportDefaults `json:"defaults"`
}

// MappingProfile is a named, reusable column mapping for one vendor's file
// format.
type MappingProfile struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Rules     MappingRules `json:"rules"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
