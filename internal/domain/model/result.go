package model

import "github.com/shopspring/decimal"

// MatchType records how a match was found, for audit.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchAlias MatchType = "alias"
	MatchFuzzy MatchType = "fuzzy"
	MatchRegex MatchType = "regex"
)

// MatchCandidate is one scored candidate from a fuzzy matcher.
// Confidence is on a 0-100 scale.
type MatchCandidate struct {
	EntityID   string    `json:"entity_id"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
	Type       MatchType `json:"match_type"`
}

// ClassifiedTransaction is a unique row after classification and entity
// resolution, ready to persist. PayeeID is set on expense rows, ClientID on
// revenue rows; either may be empty when nothing resolved. MatchConfidence
// and MatchedBy describe the payee/client match; MatchedBy is empty when no
// entity matched.
type ClassifiedTransaction struct {
	Row             Row       `json:"row"`
	Kind            RowKind   `json:"kind"`
	Category        Category  `json:"category"`
	PayeeID         string    `json:"payee_id,omitempty"`
	ClientID        string    `json:"client_id,omitempty"`
	ProjectID       string    `json:"project_id,omitempty"`
	MatchConfidence float64   `json:"match_confidence,omitempty"`
	MatchedBy       MatchType `json:"matched_by,omitempty"`
}

// DuplicateRecord is an upload row found to already exist, either earlier in
// the same file or in the persisted store. ExistingID is empty for in-file
// duplicates; Reason names the key strategy that hit.
type DuplicateRecord struct {
	Row        Row    `json:"row"`
	ExistingID string `json:"existing_id,omitempty"`
	Key        string `json:"key"`
	Reason     string `json:"reason"`
}

// ReconciliationSummary cross-checks that the persisted records matched by
// duplicate detection sum to the same total as the duplicate-flagged upload
// rows, within a fixed tolerance.
type ReconciliationSummary struct {
	ExpectedTotal   decimal.Decimal `json:"expected_total"`
	DuplicateTotal  decimal.Decimal `json:"duplicate_total"`
	Difference      decimal.Decimal `json:"difference"`
	WithinTolerance bool            `json:"within_tolerance"`
	Tolerance       decimal.Decimal `json:"tolerance"`
}

// FuzzyMatch reports a non-exact entity match that was accepted automatically.
type FuzzyMatch struct {
	Line       int     `json:"line"`
	Input      string  `json:"input"`
	EntityID   string  `json:"entity_id"`
	EntityName string  `json:"entity_name"`
	Confidence float64 `json:"confidence"`
}

// Suggestion carries the review-band candidates (confidence 40-74) for one
// row that had no auto-accepted match.
type Suggestion struct {
	Line       int              `json:"line"`
	Input      string           `json:"input"`
	Candidates []MatchCandidate `json:"candidates"`
}

// AllocationSuggestion ties an expense to its best allocation target.
// AutoAccept reflects the caller's floor and is a UI pre-selection default,
// not an engine decision.
type AllocationSuggestion struct {
	ExpenseLine int     `json:"expense_line,omitempty"`
	ExpenseID   string  `json:"expense_id,omitempty"`
	TargetID    string  `json:"target_id"`
	Confidence  float64 `json:"confidence"`
	AutoAccept  bool    `json:"auto_accept"`
}

// ImportResult is the full report for one import run.
type ImportResult struct {
	ImportedExpenses     int `json:"imported_expenses"`
	UnassociatedExpenses int `json:"unassociated_expenses"`
	ImportedRevenues     int `json:"imported_revenues"`
	UnassociatedRevenues int `json:"unassociated_revenues"`

	Expenses []ClassifiedTransaction `json:"expenses,omitempty"`
	Revenues []ClassifiedTransaction `json:"revenues,omitempty"`

	CategoryMappingUsed map[string]Category `json:"category_mapping_used,omitempty"`
	TierStats           map[string]int      `json:"tier_stats,omitempty"`
	UnmappedAccounts    []string            `json:"unmapped_accounts,omitempty"`

	Errors []RowError `json:"errors,omitempty"`

	InFileDuplicateExpenses    []DuplicateRecord `json:"in_file_duplicate_expenses,omitempty"`
	InFileDuplicateRevenues    []DuplicateRecord `json:"in_file_duplicate_revenues,omitempty"`
	PersistedDuplicateExpenses []DuplicateRecord `json:"persisted_duplicate_expenses,omitempty"`
	PersistedDuplicateRevenues []DuplicateRecord `json:"persisted_duplicate_revenues,omitempty"`

	FuzzyMatches  []FuzzyMatch           `json:"fuzzy_matches,omitempty"`
	Suggestions   []Suggestion           `json:"suggestions,omitempty"`
	CreatedPayees []Payee                `json:"created_payees,omitempty"`
	Allocations   []AllocationSuggestion `json:"allocations,omitempty"`

	ExpenseReconciliation ReconciliationSummary `json:"expense_reconciliation"`
	RevenueReconciliation ReconciliationSummary `json:"revenue_reconciliation"`
}
