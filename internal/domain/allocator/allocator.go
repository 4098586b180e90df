// Package allocator suggests which estimate, quote, or change-order line
// item an expense should be allocated to.
//
// The rules are strict where they matter: a line item in a different cost
// category is never suggested, and among same-category candidates the one
// closest in amount wins, with payee-name equality breaking ties. Confidence
// grows as the amount gap shrinks and is 0 when no same-category candidate
// exists.
package allocator

import (
	"github.com/shopspring/decimal"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/domain/similarity"
)

// Config holds allocation settings.
type Config struct {
	// AutoAcceptFloor marks suggestions at or above this confidence as
	// pre-selected in bulk allocation. It is a UI default, not a rule.
	AutoAcceptFloor float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{AutoAcceptFloor: 75}
}

// Expense is the slice of a classified transaction the allocator needs.
type Expense struct {
	Line      int
	ID        string
	Category  model.Category
	Amount    decimal.Decimal
	PayeeName string
}

// Suggest returns the best allocation target for one expense among the given
// candidates, or nil when no candidate shares the expense's category.
func Suggest(expense Expense, candidates []model.LineItem, cfg Config) *model.AllocationSuggestion {
	var best *model.LineItem
	var bestDiff decimal.Decimal
	bestPayee := false

	for i := range candidates {
		item := &candidates[i]
		if item.Category != expense.Category {
			continue
		}

		diff := item.Amount.Sub(expense.Amount).Abs()
		payeeEqual := samePayee(expense.PayeeName, item.PayeeName)

		switch {
		case best == nil:
		case diff.LessThan(bestDiff):
		case diff.Equal(bestDiff) && payeeEqual && !bestPayee:
		default:
			continue
		}
		best = item
		bestDiff = diff
		bestPayee = payeeEqual
	}

	if best == nil {
		return nil
	}

	confidence := amountConfidence(expense.Amount, bestDiff)
	return &model.AllocationSuggestion{
		ExpenseLine: expense.Line,
		ExpenseID:   expense.ID,
		TargetID:    best.ID,
		Confidence:  confidence,
		AutoAccept:  confidence >= cfg.AutoAcceptFloor,
	}
}

// SuggestAll runs Suggest over a batch of expenses against one project's
// candidates. Expenses with no suggestion are omitted.
func SuggestAll(expenses []Expense, candidates []model.LineItem, cfg Config) []model.AllocationSuggestion {
	var out []model.AllocationSuggestion
	for _, e := range expenses {
		if s := Suggest(e, candidates, cfg); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// amountConfidence maps the absolute amount gap onto 0-100, scaled by the
// expense amount so a $50 gap on a $200 expense scores like a $500 gap on a
// $2000 one. Shrinking the gap always raises the score.
func amountConfidence(amount, diff decimal.Decimal) float64 {
	if diff.IsZero() {
		return 100
	}
	base := amount.Abs()
	if base.IsZero() {
		return 0
	}
	ratio, _ := diff.Div(base).Float64()
	if ratio >= 1 {
		return 0
	}
	return 100 * (1 - ratio)
}

func samePayee(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return similarity.NormalizeBusinessName(a) == similarity.NormalizeBusinessName(b)
}
