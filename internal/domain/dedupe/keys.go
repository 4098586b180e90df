// Package dedupe fingerprints upload rows with composite keys, detects
// duplicates within a batch and against the persisted store, and computes the
// reconciliation deltas that cross-check the two.
package dedupe

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/domain/similarity"
)

const dateKeyFormat = "2006-01-02"

// ExpenseKey builds the duplicate fingerprint for an expense:
// date|absAmount|normalizedName. An empty name is a valid key component.
func ExpenseKey(date time.Time, amount decimal.Decimal, name string) string {
	return strings.Join([]string{
		date.Format(dateKeyFormat),
		amount.Abs().StringFixed(2),
		similarity.NormalizeBusinessName(name),
	}, "|")
}

// RevenueKey builds the duplicate fingerprint for a revenue row:
// rev|absAmount|date|normalizedInvoice|normalizedName.
func RevenueKey(date time.Time, amount decimal.Decimal, invoiceNumber, name string) string {
	return strings.Join([]string{
		"rev",
		amount.Abs().StringFixed(2),
		date.Format(dateKeyFormat),
		strings.ToLower(strings.TrimSpace(invoiceNumber)),
		similarity.NormalizeBusinessName(name),
	}, "|")
}

// ExpenseRowKey keys an upload row as an expense.
func ExpenseRowKey(row model.Row) string {
	return ExpenseKey(row.Date, row.Amount, row.Name)
}

// RevenueRowKey keys an upload row as a revenue.
func RevenueRowKey(row model.Row) string {
	return RevenueKey(row.Date, row.Amount, row.InvoiceNumber, row.Name)
}

// ExpenseIndex maps composite keys to persisted expenses. When two persisted
// records collide on a key the first one fetched is kept, matching the
// first-wins rule used for upload rows.
func ExpenseIndex(expenses []model.Expense) map[string]model.Expense {
	idx := make(map[string]model.Expense, len(expenses))
	for _, e := range expenses {
		key := ExpenseKey(e.Date, e.Amount, e.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = e
		}
	}
	return idx
}

// RevenueIndex maps composite keys to persisted revenues.
func RevenueIndex(revenues []model.Revenue) map[string]model.Revenue {
	idx := make(map[string]model.Revenue, len(revenues))
	for _, r := range revenues {
		key := RevenueKey(r.Date, r.Amount, r.InvoiceNumber, r.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = r
		}
	}
	return idx
}
