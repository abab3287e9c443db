package review

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/summitfloors/pricebook/internal/model"
)

// BulkAction is a closed set of whole-set sample operations. Each action is
// a pure rows-in, rows-out transformation; adding an action means extending
// this set, not growing a conditional somewhere else.
type BulkAction string

const (
	// SampleAll flags every included row as having a physical sample.
	SampleAll BulkAction = "all"
	// SampleNone clears the sample flag on every included row.
	SampleNone BulkAction = "none"
	// LineBoard synthesizes one Master Sample row per distinct product line
	// that does not already carry one.
	LineBoard BulkAction = "line_board"
)

// ParseBulkAction converts a wire/flag value into a BulkAction.
func ParseBulkAction(s string) (BulkAction, error) {
	switch BulkAction(s) {
	case SampleAll, SampleNone, LineBoard:
		return BulkAction(s), nil
	}
	return "", eris.Errorf("review: unknown bulk action %q (valid: %s, %s, %s)", s, SampleAll, SampleNone, LineBoard)
}

// Apply returns a new row slice with the action applied. The input is never
// mutated.
func (a BulkAction) Apply(rows []model.MatchResult) ([]model.MatchResult, error) {
	switch a {
	case SampleAll:
		return setSampleFlags(rows, true), nil
	case SampleNone:
		return setSampleFlags(rows, false), nil
	case LineBoard:
		return addLineBoards(rows), nil
	}
	return nil, eris.Errorf("review: unknown bulk action %q", string(a))
}

// setSampleFlags touches only rows currently included; skipped rows keep
// their flag so toggling a row back in restores its prior state.
func setSampleFlags(rows []model.MatchResult, on bool) []model.MatchResult {
	out := cloneRows(rows)
	for i := range out {
		if !out[i].Skipped {
			out[i].HasSample = on
		}
	}
	return out
}

// addLineBoards prepends a synthetic Master Sample row for each distinct
// product line that lacks one. Idempotent within the in-memory set: the
// existing-master check looks at the rows passed in, so running it twice in
// one session adds nothing the second time. It does not consult the
// database.
//
// Lines whose rows resolved to an existing catalog product carry that
// product id onto the master, so the master attaches as a new variant under
// the existing line instead of spawning a duplicate product.
func addLineBoards(rows []model.MatchResult) []model.MatchResult {
	hasMaster := make(map[string]bool)
	lineProduct := make(map[string]int64)
	for _, r := range rows {
		key := lineKey(r.ProductName)
		if r.IsMaster {
			hasMaster[key] = true
		}
		if r.ProductID != 0 && lineProduct[key] == 0 {
			lineProduct[key] = r.ProductID
		}
	}

	var masters []model.MatchResult
	seen := make(map[string]bool)
	for _, r := range rows {
		key := lineKey(r.ProductName)
		if key == "" || seen[key] || hasMaster[key] {
			continue
		}
		seen[key] = true
		masters = append(masters, masterRow(r.ProductName, lineProduct[key]))
	}

	if len(masters) == 0 {
		return cloneRows(rows)
	}
	out := make([]model.MatchResult, 0, len(masters)+len(rows))
	out = append(out, masters...)
	out = append(out, cloneRows(rows)...)
	return out
}

// masterRow builds the synthetic line-board entry: a zero-cost new variant
// named "Master Sample" flagged as a sample. A non-zero productID pins the
// master to the line's existing catalog product.
func masterRow(productName string, productID int64) model.MatchResult {
	zero := 0.0
	return model.MatchResult{
		Candidate: model.Candidate{
			RowIndex:    -1,
			ProductName: productName,
			VariantName: model.MasterSampleName,
			UnitCost:    &zero,
		},
		Status:      model.StatusNew,
		ProductID:   productID,
		ProductName: productName,
		IsMaster:    true,
		HasSample:   true,
	}
}

func lineKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
