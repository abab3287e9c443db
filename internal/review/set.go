// Package review owns the user-adjustable working set between preview and
// execute: per-row toggles, bulk sample actions, and display ordering.
//
// Every edit produces a new version of the row list via a pure
// transformation; the set keeps the version history, which gives undo/redo
// for free and keeps the preview output itself untouched.
package review

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/summitfloors/pricebook/internal/model"
)

// Normalize fixes up raw preview results into their initial review state:
// error rows start skipped, everything else included, and the editable
// product name defaults to the candidate's.
func Normalize(results []model.MatchResult) []model.MatchResult {
	rows := cloneRows(results)
	for i := range rows {
		rows[i].Skipped = rows[i].Status == model.StatusError
		if rows[i].ProductName == "" {
			rows[i].ProductName = rows[i].Candidate.ProductName
		}
	}
	return rows
}

// Set is the versioned review working set.
type Set struct {
	versions [][]model.MatchResult
	cursor   int
}

// NewSet starts a working set from preview results.
func NewSet(results []model.MatchResult) *Set {
	return &Set{versions: [][]model.MatchResult{Normalize(results)}}
}

// Rows returns a copy of the current version.
func (s *Set) Rows() []model.MatchResult {
	return cloneRows(s.versions[s.cursor])
}

// Len returns the current row count.
func (s *Set) Len() int {
	return len(s.versions[s.cursor])
}

// push records a new version, discarding any redo tail.
func (s *Set) push(rows []model.MatchResult) {
	s.versions = append(s.versions[:s.cursor+1], rows)
	s.cursor++
}

func (s *Set) edit(i int, fn func(*model.MatchResult)) error {
	current := s.versions[s.cursor]
	if i < 0 || i >= len(current) {
		return eris.Errorf("review: row index %d out of range (have %d rows)", i, len(current))
	}
	rows := cloneRows(current)
	fn(&rows[i])
	s.push(rows)
	return nil
}

// ToggleSkip flips a row between included and skipped.
func (s *Set) ToggleSkip(i int) error {
	return s.edit(i, func(r *model.MatchResult) { r.Skipped = !r.Skipped })
}

// SetSample sets one row's sample flag.
func (s *Set) SetSample(i int, on bool) error {
	return s.edit(i, func(r *model.MatchResult) { r.HasSample = on })
}

// EditName overrides the product name used at execute time. The value is
// applied verbatim; no re-matching occurs, the match decision stays frozen
// at preview time.
func (s *Set) EditName(i int, name string) error {
	return s.edit(i, func(r *model.MatchResult) { r.ProductName = name })
}

// ApplyBulk runs a bulk sample action over the current version.
func (s *Set) ApplyBulk(a BulkAction) error {
	rows, err := a.Apply(s.versions[s.cursor])
	if err != nil {
		return err
	}
	s.push(rows)
	return nil
}

// Undo steps back one version. Returns false at the oldest version.
func (s *Set) Undo() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Redo steps forward after an undo. Returns false at the newest version.
func (s *Set) Redo() bool {
	if s.cursor == len(s.versions)-1 {
		return false
	}
	s.cursor++
	return true
}

// DisplayOrder returns a stably sorted copy for presentation: errors first,
// then new, update, match, so attention lands where it is needed. This is a
// display concern only; the underlying row order (and therefore execute
// order) is never resorted.
func DisplayOrder(rows []model.MatchResult) []model.MatchResult {
	out := cloneRows(rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status.Before(out[j].Status)
	})
	return out
}

// Eligible returns the rows execute would apply: included rows classified
// new or update. Match and error rows carry no mutations.
func Eligible(rows []model.MatchResult) []model.MatchResult {
	var out []model.MatchResult
	for _, r := range rows {
		if r.Skipped {
			continue
		}
		if r.Status == model.StatusNew || r.Status == model.StatusUpdate {
			out = append(out, r)
		}
	}
	return out
}

func cloneRows(rows []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, len(rows))
	copy(out, rows)
	for i := range out {
		if len(out[i].AffectedVariants) > 0 {
			av := make([]model.VariantChange, len(out[i].AffectedVariants))
			copy(av, out[i].AffectedVariants)
			out[i].AffectedVariants = av
		}
	}
	return out
}
