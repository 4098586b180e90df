package dedupe

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/import-backend/internal/domain/model"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func amount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func makeRow(line int, date, amt, name string) model.Row {
	return model.Row{Line: line, Date: day(date), Amount: amount(amt), Name: name}
}

func TestExpenseKey_NormalizesNameAndAmount(t *testing.T) {
	a := ExpenseKey(day("2025-01-10"), amount("1200"), "ABC Construction")
	b := ExpenseKey(day("2025-01-10"), amount("-1200.00"), "ABC Construction LLC")

	assert.Equal(t, "2025-01-10|1200.00|abc", a)
	assert.Equal(t, a, b)
}

func TestExpenseKey_EmptyNameIsValid(t *testing.T) {
	key := ExpenseKey(day("2025-01-10"), amount("50.25"), "")

	assert.Equal(t, "2025-01-10|50.25|", key)
}

func TestRevenueKey_CarriesInvoiceNumber(t *testing.T) {
	key := RevenueKey(day("2025-02-01"), amount("3500.00"), " INV-42 ", "Miller Property Group")

	assert.Equal(t, "rev|3500.00|2025-02-01|inv-42|miller property group", key)
}

func TestSplitUnique_FirstOccurrenceKeptLaterFlagged(t *testing.T) {
	rows := []model.Row{
		makeRow(1, "2025-01-10", "1200.00", "ABC Construction"),
		makeRow(2, "2025-01-10", "1200.00", "ABC Construction LLC"),
		makeRow(3, "2025-01-11", "1200.00", "ABC Construction"),
	}

	unique, dups := SplitUnique(rows, ExpenseRowKey)

	require.Len(t, unique, 2)
	assert.Equal(t, 1, unique[0].Line)
	assert.Equal(t, 3, unique[1].Line)

	require.Len(t, dups, 1)
	assert.Equal(t, 2, dups[0].Row.Line)
	assert.Empty(t, dups[0].ExistingID)
	assert.Contains(t, dups[0].Reason, "line 1")
}

func TestSplitUnique_DeterministicAcrossRuns(t *testing.T) {
	rows := []model.Row{
		makeRow(1, "2025-01-10", "100.00", "Home Depot"),
		makeRow(2, "2025-01-10", "100.00", "Home Depot"),
	}

	u1, d1 := SplitUnique(rows, ExpenseRowKey)
	u2, d2 := SplitUnique(rows, ExpenseRowKey)

	assert.Equal(t, u1, u2)
	assert.Equal(t, d1, d2)
}

func TestFindPersistedExpense_UploadedNameStrategy(t *testing.T) {
	idx := ExpenseIndex([]model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("1200.00"), Name: "ABC Construction"},
	})
	row := makeRow(5, "2025-01-10", "1200.00", "ABC Construction LLC")

	dup, found := FindPersistedExpense(row, "", idx)

	require.True(t, found)
	assert.Equal(t, "e1", dup.ExistingID)
	assert.Equal(t, "matched on uploaded name", dup.Reason)
}

func TestFindPersistedExpense_EmptyNameStrategy(t *testing.T) {
	idx := ExpenseIndex([]model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("88.00"), Name: ""},
	})
	row := makeRow(5, "2025-01-10", "88.00", "")

	dup, found := FindPersistedExpense(row, "", idx)

	require.True(t, found)
	assert.Equal(t, "matched with empty name", dup.Reason)
}

func TestFindPersistedExpense_PayeeNameForUnnamedRow(t *testing.T) {
	idx := ExpenseIndex([]model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("88.00"), Name: "United Rentals"},
	})
	row := makeRow(5, "2025-01-10", "88.00", "")

	dup, found := FindPersistedExpense(row, "United Rentals", idx)

	require.True(t, found)
	assert.Equal(t, "e1", dup.ExistingID)
	assert.Equal(t, "matched on payee name for unnamed row", dup.Reason)
}

func TestFindPersistedExpense_ConfirmedPayeeName(t *testing.T) {
	idx := ExpenseIndex([]model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("88.00"), Name: "United Rentals Inc"},
	})
	row := makeRow(5, "2025-01-10", "88.00", "UNITED RENTALS INC")

	dup, found := FindPersistedExpense(row, "United Rentals Inc", idx)

	require.True(t, found)
	assert.Equal(t, "e1", dup.ExistingID)
}

func TestFindPersistedExpense_PayeeStrategySkippedWhenNamesDiffer(t *testing.T) {
	// The payee fuzzy-matched but its canonical name is not the uploaded
	// name, so the payee-key strategy must not fire.
	idx := ExpenseIndex([]model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("88.00"), Name: "United Rentals of Texas"},
	})
	row := makeRow(5, "2025-01-10", "88.00", "U.R. Equipment")

	_, found := FindPersistedExpense(row, "United Rentals of Texas", idx)

	assert.False(t, found)
}

func TestFindPersistedExpense_NoHit(t *testing.T) {
	idx := ExpenseIndex(nil)
	row := makeRow(1, "2025-01-10", "10.00", "Home Depot")

	_, found := FindPersistedExpense(row, "", idx)

	assert.False(t, found)
}

func TestFindPersistedRevenue(t *testing.T) {
	idx := RevenueIndex([]model.Revenue{
		{ID: "r1", Date: day("2025-02-01"), Amount: amount("3500.00"), InvoiceNumber: "INV-42", Name: "Miller Property Group"},
	})
	row := model.Row{Line: 2, Date: day("2025-02-01"), Amount: amount("3500.00"), InvoiceNumber: "inv-42", Name: "Miller Property Group LLC"}

	dup, found := FindPersistedRevenue(row, idx)

	require.True(t, found)
	assert.Equal(t, "r1", dup.ExistingID)
}
