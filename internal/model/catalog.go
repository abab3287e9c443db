package model

import "time"

// Manufacturer is a vendor in the directory. DefaultProductType pre-fills
// the import defaults when a profile selects this manufacturer.
type Manufacturer struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	DefaultProductType string `json:"defaultProductType,omitempty"`
}

// Product is a product line (e.g. "Oak Plank") under a manufacturer.
type Product struct {
	ID             int64  `json:"id"`
	ManufacturerID int64  `json:"manufacturerId,omitempty"`
	Name           string `json:"name"`
	ProductType    string `json:"productType,omitempty"`
}

// Variant is a sellable configuration (color/size) under a product line.
type Variant struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku,omitempty"`
	Size        string    `json:"size,omitempty"`
	CartonSize  *float64  `json:"cartonSize,omitempty"`
	UnitCost    float64   `json:"unitCost"`
	RetailPrice *float64  `json:"retailPrice,omitempty"`
	HasSample   bool      `json:"hasSample"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MasterSampleName is the variant name of the synthetic line-board row a
// bulk sample action can add for a product line.
const MasterSampleName = "Master Sample"
