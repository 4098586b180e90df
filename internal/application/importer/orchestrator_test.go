package importer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/infrastructure/config"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

func newTestOrchestrator(repo storage.Repository) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, config.Default(), logger)
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func amount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func expenseRow(line int, date, amt, name, projectToken string) model.Row {
	return model.Row{
		Line:            line,
		Date:            day(date),
		TxnType:         "Expense",
		Amount:          amount(amt),
		Name:            name,
		ProjectToken:    projectToken,
		AccountFullName: "Job Costs:Materials",
	}
}

func revenueRow(line int, date, amt, name, invoice string) model.Row {
	return model.Row{
		Line:          line,
		Date:          day(date),
		TxnType:       "Invoice",
		Amount:        amount(amt),
		Name:          name,
		InvoiceNumber: invoice,
	}
}

func seededRepo() *storage.MockRepository {
	repo := storage.NewMockRepository()
	repo.Payees = []model.Payee{
		{ID: "p1", DisplayName: "ABC Construction LLC", Type: model.PayeeSubcontractor},
	}
	repo.Clients = []model.Client{
		{ID: "c1", DisplayName: "Miller Property Group"},
	}
	repo.Projects = []model.Project{
		{ID: "prj1", Number: "24-101", Name: "Oak Street Remodel"},
	}
	return repo
}

func TestRun_SplitsStreamsByTransactionType(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	rows := []model.Row{
		expenseRow(2, "2025-01-10", "1500.00", "ABC Construction LLC", "24-101"),
		revenueRow(3, "2025-01-12", "3500.00", "Miller Property Group", "INV-42"),
	}

	result, err := o.Run(context.Background(), rows, nil, Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedExpenses)
	assert.Equal(t, 1, result.ImportedRevenues)
	require.Len(t, result.Expenses, 1)
	assert.Equal(t, model.KindExpense, result.Expenses[0].Kind)
	assert.Equal(t, "p1", result.Expenses[0].PayeeID)
	assert.Equal(t, "prj1", result.Expenses[0].ProjectID)
	require.Len(t, result.Revenues, 1)
	assert.Equal(t, "c1", result.Revenues[0].ClientID)
	assert.True(t, repo.InsertExpensesCalled)
	assert.True(t, repo.InsertRevenuesCalled)
}

func TestRun_InFileDuplicatesFlaggedOnce(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	rows := []model.Row{
		expenseRow(2, "2025-01-10", "1500.00", "ABC Construction", ""),
		expenseRow(3, "2025-01-10", "1500.00", "ABC Construction LLC", ""),
	}

	result, err := o.Run(context.Background(), rows, nil, Options{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedExpenses)
	require.Len(t, result.InFileDuplicateExpenses, 1)
	assert.Equal(t, 3, result.InFileDuplicateExpenses[0].Row.Line)
	assert.Contains(t, result.InFileDuplicateExpenses[0].Reason, "line 2")
}

func TestRun_ReimportIsIdempotent(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)
	rows := []model.Row{
		expenseRow(2, "2025-01-10", "1500.00", "ABC Construction LLC", "24-101"),
		revenueRow(3, "2025-01-12", "3500.00", "Miller Property Group", "INV-42"),
	}

	first, err := o.Run(context.Background(), rows, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, first.ImportedExpenses)
	require.Equal(t, 1, first.ImportedRevenues)

	second, err := o.Run(context.Background(), rows, nil, Options{})

	require.NoError(t, err)
	assert.Equal(t, 0, second.ImportedExpenses)
	assert.Equal(t, 0, second.ImportedRevenues)
	assert.Len(t, second.PersistedDuplicateExpenses, 1)
	assert.Len(t, second.PersistedDuplicateRevenues, 1)
	assert.True(t, second.ExpenseReconciliation.WithinTolerance)
	assert.True(t, second.RevenueReconciliation.WithinTolerance)
}

func TestRun_AutoCreatedPayeeVisibleToLaterRows(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	rows := []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "Valley Concrete Pumping", ""),
		expenseRow(3, "2025-01-11", "950.00", "Valley Concrete Pumping", ""),
	}

	result, err := o.Run(context.Background(), rows, nil, Options{AutoCreatePayees: true})

	require.NoError(t, err)
	require.Len(t, result.CreatedPayees, 1)
	created := result.CreatedPayees[0]
	require.Len(t, result.Expenses, 2)
	assert.Equal(t, created.ID, result.Expenses[0].PayeeID)
	assert.Equal(t, created.ID, result.Expenses[1].PayeeID, "second row should match the payee the first row created")
	assert.Equal(t, model.MatchExact, result.Expenses[1].MatchedBy)
}

func TestRun_NoAutoCreateWithoutOption(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "Valley Concrete Pumping", ""),
	}, nil, Options{DryRun: true})

	require.NoError(t, err)
	assert.False(t, repo.CreatePayeeCalled)
	assert.Empty(t, result.CreatedPayees)
	require.Len(t, result.Expenses, 1)
	assert.Empty(t, result.Expenses[0].PayeeID)
}

func TestRun_FuzzyMatchRecordedForAudit(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "ABC Construction", ""),
	}, nil, Options{DryRun: true})

	require.NoError(t, err)
	require.Len(t, result.FuzzyMatches, 1)
	assert.Equal(t, "p1", result.FuzzyMatches[0].EntityID)
	assert.Equal(t, "ABC Construction", result.FuzzyMatches[0].Input)
	assert.GreaterOrEqual(t, result.FuzzyMatches[0].Confidence, 75.0)
}

func TestRun_RowErrorsCarriedThroughWithoutAborting(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	rowErrs := []model.RowError{
		{Line: 4, Field: "amount", Message: "invalid amount", Value: "abc"},
	}

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "ABC Construction LLC", ""),
	}, rowErrs, Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedExpenses)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Line)
}

func TestRun_RegistryLoadFailureIsFatal(t *testing.T) {
	repo := seededRepo()
	repo.ListPayeesErr = assert.AnError
	o := newTestOrchestrator(repo)

	_, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "ABC Construction LLC", ""),
	}, nil, Options{})

	require.Error(t, err)
	assert.False(t, repo.InsertExpensesCalled, "no rows should be written after a registry load failure")
}

func TestRun_BatchWriteFailureFailsRun(t *testing.T) {
	repo := seededRepo()
	repo.InsertExpensesErr = assert.AnError
	o := newTestOrchestrator(repo)

	_, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "ABC Construction LLC", ""),
	}, nil, Options{SourceLabel: "jan.csv"})

	require.Error(t, err)
	require.Len(t, repo.Runs, 1)
	for _, run := range repo.Runs {
		assert.Equal(t, storage.RunStatusFailed, run.Status)
	}
}

func TestRun_DryRunSkipsWritesButRecordsRun(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "ABC Construction LLC", "24-101"),
	}, nil, Options{DryRun: true, SourceLabel: "jan.csv"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedExpenses)
	assert.False(t, repo.InsertExpensesCalled)
	assert.False(t, repo.InsertRevenuesCalled)

	require.Len(t, repo.Runs, 1)
	for _, run := range repo.Runs {
		assert.Equal(t, storage.RunStatusDryRun, run.Status)
		assert.True(t, run.DryRun)
		assert.Equal(t, 1, run.ImportedExpenses)
		assert.NotEmpty(t, run.ResultJSON)
	}
}

func TestRun_PersistedDuplicateViaConfirmedPayeeName(t *testing.T) {
	repo := seededRepo()
	repo.Expenses = []model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("800.00"), Name: "ABC Construction LLC", Category: model.CategoryMaterials},
	}
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "abc construction llc", ""),
	}, nil, Options{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ImportedExpenses)
	require.Len(t, result.PersistedDuplicateExpenses, 1)
	assert.Equal(t, "e1", result.PersistedDuplicateExpenses[0].ExistingID)
	assert.True(t, result.ExpenseReconciliation.WithinTolerance)
	assert.Equal(t, "800.00", result.ExpenseReconciliation.ExpectedTotal.StringFixed(2))
}

func TestRun_ExcludedCategoryLeftOutOfReconciliation(t *testing.T) {
	repo := seededRepo()
	repo.Expenses = []model.Expense{
		{ID: "e1", Date: day("2025-01-10"), Amount: amount("500.00"), Name: "Crew Payroll", Category: model.CategoryLabor},
	}
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "500.00", "Crew Payroll", ""),
	}, nil, Options{DryRun: true})

	require.NoError(t, err)
	require.Len(t, result.PersistedDuplicateExpenses, 1)
	summary := result.ExpenseReconciliation
	assert.Equal(t, "0.00", summary.ExpectedTotal.StringFixed(2))
	assert.Equal(t, "500.00", summary.DuplicateTotal.StringFixed(2))
	assert.False(t, summary.WithinTolerance)
}

func TestRun_AllocationSuggestionsForProjectExpenses(t *testing.T) {
	repo := seededRepo()
	repo.LineItems = []model.LineItem{
		{ID: "li1", ProjectID: "prj1", Source: model.SourceQuote, Description: "framing", Category: model.CategoryMaterials, Amount: amount("1500.00"), PayeeName: "ABC Construction LLC"},
		{ID: "li2", ProjectID: "prj1", Source: model.SourceEstimate, Description: "roofing", Category: model.CategorySubcontractor, Amount: amount("8000.00")},
	}
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), []model.Row{
		expenseRow(2, "2025-01-10", "1500.00", "ABC Construction LLC", "24-101"),
	}, nil, Options{DryRun: true, SuggestAllocations: true})

	require.NoError(t, err)
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, "li1", result.Allocations[0].TargetID)
	assert.Equal(t, 100.0, result.Allocations[0].Confidence)
	assert.True(t, result.Allocations[0].AutoAccept)
}

func TestRun_TierStatsReportClassifierCoverage(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	rows := []model.Row{
		expenseRow(2, "2025-01-10", "800.00", "ABC Construction LLC", ""),
		{Line: 3, Date: day("2025-01-11"), TxnType: "Expense", Amount: amount("42.00"), Name: "Mystery Vendor", AccountFullName: "Completely Unknown Account"},
	}

	result, err := o.Run(context.Background(), rows, nil, Options{DryRun: true})

	require.NoError(t, err)
	assert.NotEmpty(t, result.TierStats)
	assert.Contains(t, result.UnmappedAccounts, "Completely Unknown Account")
}

func TestRun_EmptyUpload(t *testing.T) {
	repo := seededRepo()
	o := newTestOrchestrator(repo)

	result, err := o.Run(context.Background(), nil, nil, Options{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ImportedExpenses)
	assert.Equal(t, 0, result.ImportedRevenues)
	assert.Empty(t, result.Expenses)
}
