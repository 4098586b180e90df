package dedupe

import (
	"github.com/shopspring/decimal"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// Reconcile cross-checks two independently computed totals: the sum of
// duplicate-flagged upload rows and the sum of the persisted records they
// matched. The two should agree when duplicate detection is correct.
func Reconcile(expectedTotal, duplicateTotal, tolerance decimal.Decimal) model.ReconciliationSummary {
	difference := expectedTotal.Sub(duplicateTotal).Abs()
	return model.ReconciliationSummary{
		ExpectedTotal:   expectedTotal,
		DuplicateTotal:  duplicateTotal,
		Difference:      difference,
		WithinTolerance: difference.LessThanOrEqual(tolerance),
		Tolerance:       tolerance,
	}
}

// ReconcileExpenses builds the expense-side summary. ExpectedTotal sums the
// matched persisted records, skipping the excluded category and records
// already split into allocations. The exclusion mirrors long-standing import
// behavior and is kept pending product confirmation.
func ReconcileExpenses(duplicates []model.DuplicateRecord, matched map[string]model.Expense, excluded model.Category, tolerance decimal.Decimal) model.ReconciliationSummary {
	duplicateTotal := sumDuplicates(duplicates)

	expectedTotal := decimal.Zero
	for _, d := range duplicates {
		e, ok := matched[d.ExistingID]
		if !ok {
			continue
		}
		if e.Category == excluded || e.IsSplit {
			continue
		}
		expectedTotal = expectedTotal.Add(e.Amount.Abs())
	}

	return Reconcile(expectedTotal, duplicateTotal, tolerance)
}

// ReconcileRevenues builds the revenue-side summary. No category exclusion
// applies.
func ReconcileRevenues(duplicates []model.DuplicateRecord, matched map[string]model.Revenue, tolerance decimal.Decimal) model.ReconciliationSummary {
	duplicateTotal := sumDuplicates(duplicates)

	expectedTotal := decimal.Zero
	for _, d := range duplicates {
		if r, ok := matched[d.ExistingID]; ok {
			expectedTotal = expectedTotal.Add(r.Amount.Abs())
		}
	}

	return Reconcile(expectedTotal, duplicateTotal, tolerance)
}

func sumDuplicates(duplicates []model.DuplicateRecord) decimal.Decimal {
	total := decimal.Zero
	for _, d := range duplicates {
		total = total.Add(d.Row.Amount.Abs())
	}
	return total
}
