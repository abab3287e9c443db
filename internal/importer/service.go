// Package importer orchestrates the preview/execute import flow on top of
// the catalog store.
package importer

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/summitfloors/pricebook/internal/catalog"
	"github.com/summitfloors/pricebook/internal/match"
	"github.com/summitfloors/pricebook/internal/model"
	"github.com/summitfloors/pricebook/internal/review"
)

// ErrNothingToApply signals an execute request whose rows contain no
// included new or update entries.
var ErrNothingToApply = eris.New("importer: nothing to apply")

// Service runs previews and executes against a single store. Execute runs
// are serialized; two concurrent confirmations cannot interleave plans.
type Service struct {
	store catalog.Store
	mu    sync.Mutex
}

func NewService(store catalog.Store) *Service {
	return &Service{store: store}
}

// PreviewRequest carries normalized candidates into classification.
type PreviewRequest struct {
	Candidates []model.Candidate
	Strategy   model.Strategy
	Defaults   model.ImportDefaults
}

// PreviewResult is the reconciliation report: one row per candidate in
// source order, normalized into its initial review state. Defaults come
// back resolved so the caller can echo them into execute unchanged.
type PreviewResult struct {
	Rows     []model.MatchResult  `json:"rows"`
	Strategy model.Strategy       `json:"strategy"`
	Defaults model.ImportDefaults `json:"defaults"`
}

// Preview classifies candidates against a point-in-time catalog snapshot.
// It never mutates the catalog; running it twice in a row yields the same
// report.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	defaults, err := s.resolveDefaults(ctx, req.Defaults)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	rows := review.Normalize(match.Run(snap, req.Candidates, req.Strategy))
	zap.L().Debug("preview classified",
		zap.Int("candidates", len(req.Candidates)),
		zap.String("strategy", string(req.Strategy)),
	)
	return &PreviewResult{Rows: rows, Strategy: req.Strategy, Defaults: defaults}, nil
}

// ExecuteRequest carries the reviewed rows back for application. Rows are
// the review working set as the user left it; eligibility is re-derived
// here, not trusted from the client.
type ExecuteRequest struct {
	Rows     []model.MatchResult
	Strategy model.Strategy
	Defaults model.ImportDefaults
}

// Execute applies the eligible rows in one transaction. The whole batch
// commits or none of it does.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (model.ExecuteSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := review.Eligible(req.Rows)
	if len(eligible) == 0 {
		return model.ExecuteSummary{}, ErrNothingToApply
	}

	defaults, err := s.resolveDefaults(ctx, req.Defaults)
	if err != nil {
		return model.ExecuteSummary{}, err
	}

	plan := BuildPlan(eligible, req.Strategy, defaults)
	summary, err := s.store.Apply(ctx, plan)
	if err != nil {
		return model.ExecuteSummary{}, err
	}

	zap.L().Info("import executed",
		zap.String("run_id", plan.RunID),
		zap.String("strategy", string(req.Strategy)),
		zap.Int("updates", summary.Updates),
		zap.Int("created", summary.Created),
	)
	return summary, nil
}

// resolveDefaults fills an empty product type from the default
// manufacturer's configured type.
func (s *Service) resolveDefaults(ctx context.Context, d model.ImportDefaults) (model.ImportDefaults, error) {
	if d.ProductType != "" || d.ManufacturerID == 0 {
		return d, nil
	}
	m, err := s.store.GetManufacturer(ctx, d.ManufacturerID)
	if err != nil {
		return d, err
	}
	d.ProductType = m.DefaultProductType
	return d, nil
}

// BuildPlan turns eligible rows into an ordered mutation plan. Row order is
// preserved, so duplicate rows in one file resolve last-applied-wins. New
// rows sharing an edited product name create that product once; later rows
// attach to it through the plan key.
func BuildPlan(rows []model.MatchResult, strategy model.Strategy, defaults model.ImportDefaults) *catalog.Plan {
	plan := &catalog.Plan{RunID: uuid.NewString(), Strategy: strategy}
	created := make(map[string]bool)

	for _, r := range rows {
		switch r.Status {
		case model.StatusNew:
			key := productKey(r.ProductName)
			if r.ProductID == 0 && !created[key] {
				created[key] = true
				plan.Ops = append(plan.Ops, catalog.CreateProduct{
					Key:              key,
					Name:             strings.TrimSpace(r.ProductName),
					ManufacturerName: r.Candidate.Manufacturer,
					ManufacturerID:   defaults.ManufacturerID,
					ProductType:      defaults.ProductType,
				})
			}
			plan.Ops = append(plan.Ops, createVariantOp(r, key))

		case model.StatusUpdate:
			for _, av := range r.AffectedVariants {
				plan.Ops = append(plan.Ops, updateVariantOp(r, av, strategy))
			}
		}
	}
	return plan
}

func createVariantOp(r model.MatchResult, key string) catalog.CreateVariant {
	c := r.Candidate
	op := catalog.CreateVariant{
		ProductID:   r.ProductID,
		Name:        c.VariantName,
		SKU:         c.SKU,
		Size:        c.Size,
		CartonSize:  c.CartonSize,
		RetailPrice: c.RetailPrice,
		HasSample:   r.HasSample,
	}
	if r.ProductID == 0 {
		op.ProductKey = key
	}
	if c.UnitCost != nil {
		op.UnitCost = *c.UnitCost
	}
	return op
}

// updateVariantOp maps one affected variant to an update. Under
// variant_match every supplied field applies; under product_line_match only
// pricing fans out, descriptive fields stay per-variant.
func updateVariantOp(r model.MatchResult, av model.VariantChange, strategy model.Strategy) catalog.UpdateVariant {
	c := r.Candidate
	op := catalog.UpdateVariant{
		VariantID:   av.VariantID,
		UnitCost:    c.UnitCost,
		RetailPrice: c.RetailPrice,
	}
	if strategy == model.StrategyVariant {
		if c.Size != "" {
			op.Size = &c.Size
		}
		op.CartonSize = c.CartonSize
	}
	if r.HasSample {
		t := true
		op.HasSample = &t
	}
	return op
}

func productKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
