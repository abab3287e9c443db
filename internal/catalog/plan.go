package catalog

import "github.com/summitfloors/pricebook/internal/model"

// Plan is an ordered list of catalog mutations produced from the approved
// review rows. Ops apply strictly in order inside one transaction, which is
// what makes duplicate rows in a single file deterministic
// (last-applied-wins).
type Plan struct {
	// RunID identifies the execute run in the import audit log.
	RunID    string
	Strategy model.Strategy
	Ops      []PlanOp
}

// PlanOp is a closed set of catalog mutations.
type PlanOp interface{ planOp() }

// CreateProduct inserts a new product line. Key lets later CreateVariant
// ops in the same plan reference the product before its id exists.
// ManufacturerName comes from the spreadsheet row and is resolved
// find-or-create inside the transaction; ManufacturerID is the import
// default used when the row omitted the manufacturer.
type CreateProduct struct {
	Key              string
	Name             string
	ManufacturerName string
	ManufacturerID   int64
	ProductType      string
}

// CreateVariant inserts a variant under an existing product (ProductID) or
// one created earlier in this plan (ProductKey).
type CreateVariant struct {
	ProductID   int64
	ProductKey  string
	Name        string
	SKU         string
	Size        string
	CartonSize  *float64
	UnitCost    float64
	RetailPrice *float64
	HasSample   bool
}

// UpdateVariant sets the non-nil fields on an existing variant. Nil fields
// are left untouched, so an unmapped spreadsheet column can never clear a
// stored value.
type UpdateVariant struct {
	VariantID   int64
	UnitCost    *float64
	Size        *string
	CartonSize  *float64
	RetailPrice *float64
	HasSample   *bool
}

func (CreateProduct) planOp() {}
func (CreateVariant) planOp() {}
func (UpdateVariant) planOp() {}

// Summary tallies what the plan will report once committed. Created counts
// variant-creation events; product rows are carriers, not counted.
func (p *Plan) Summary() model.ExecuteSummary {
	var s model.ExecuteSummary
	for _, op := range p.Ops {
		switch op.(type) {
		case CreateVariant:
			s.Created++
		case UpdateVariant:
			s.Updates++
		}
	}
	return s
}
