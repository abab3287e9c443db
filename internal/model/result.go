package model

import "github.com/rotisserie/eris"

// Strategy selects how candidates are matched against the catalog. It is
// chosen once per import run, not per row.
type Strategy string

const (
	// StrategyVariant matches on product name + variant name and touches
	// only the single matched variant.
	StrategyVariant Strategy = "variant_match"
	// StrategyProductLine matches on product name only and applies pricing
	// to every variant under the matched line.
	StrategyProductLine Strategy = "product_line_match"
)

// ParseStrategy converts a wire/flag value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyVariant, StrategyProductLine:
		return Strategy(s), nil
	}
	return "", eris.Errorf("model: unknown strategy %q (valid: %s, %s)", s, StrategyVariant, StrategyProductLine)
}

// MatchStatus classifies a candidate against the current catalog.
type MatchStatus string

const (
	StatusNew    MatchStatus = "new"
	StatusUpdate MatchStatus = "update"
	StatusMatch  MatchStatus = "match"
	StatusError  MatchStatus = "error"
)

// displayRank orders statuses for review presentation: rows needing
// attention first.
func (s MatchStatus) displayRank() int {
	switch s {
	case StatusError:
		return 0
	case StatusNew:
		return 1
	case StatusUpdate:
		return 2
	case StatusMatch:
		return 3
	}
	return 4
}

// Before reports whether s sorts ahead of other in the review display order.
func (s MatchStatus) Before(other MatchStatus) bool {
	return s.displayRank() < other.displayRank()
}

// VariantChange records the field-level diff against one existing variant.
// OldCost is the pre-change stored cost, kept purely for display.
type VariantChange struct {
	VariantID int64    `json:"variantId"`
	OldCost   float64  `json:"oldCost"`
	Changes   []string `json:"changes"`
}

// MatchResult is the classified, diffed outcome for one candidate, plus the
// review-stage fields the user may edit before execute. Review edits never
// touch the embedded candidate.
type MatchResult struct {
	Candidate Candidate   `json:"candidate"`
	Status    MatchStatus `json:"status"`

	// ProductID is set when the candidate resolved to an existing product
	// (update/match rows, and new-variant rows under an existing line).
	ProductID int64 `json:"productId,omitempty"`

	// AffectedVariants is empty for new rows, exactly the changed variants
	// for update rows, and the matched variants with empty change lists for
	// match rows.
	AffectedVariants []VariantChange `json:"affectedVariants,omitempty"`

	// Message carries the human-readable reason for error rows and soft
	// warnings such as ambiguous-match tie-breaks.
	Message string `json:"message,omitempty"`

	// Review fields. Not persisted; the match decision is frozen at preview
	// time and ProductName is used verbatim at execute.
	Skipped     bool   `json:"skipped"`
	HasSample   bool   `json:"hasSample"`
	ProductName string `json:"productName"`
	IsMaster    bool   `json:"isMaster,omitempty"`
}

// ExecuteSummary reports what an execute run committed. Created counts
// variant-creation events; Updates counts variant updates.
type ExecuteSummary struct {
	Updates int `json:"updates"`
	Created int `json:"created"`
}
