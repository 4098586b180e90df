package storage

import (
	"fmt"
	"time"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in slices and maps, making tests fast and isolated.
type MockRepository struct {
	Payees        []model.Payee
	Clients       []model.Client
	Projects      []model.Project
	Aliases       []model.ProjectAlias
	CategoryRules []model.CategoryRule

	Expenses  []model.Expense
	Revenues  []model.Revenue
	LineItems []model.LineItem

	Runs map[string]*ImportRun

	nextID int

	// Hooks for test assertions
	InsertExpensesCalled bool
	InsertRevenuesCalled bool
	CreatePayeeCalled    bool
	LastCreatedPayee     *model.Payee

	// Error injection for testing error paths
	ListPayeesErr     error
	ListExpensesErr   error
	ListRevenuesErr   error
	InsertExpensesErr error
	InsertRevenuesErr error
	CreatePayeeErr    error
	StartRunErr       error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		Runs:   make(map[string]*ImportRun),
		nextID: 1,
	}
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) ListPayees() ([]model.Payee, error) {
	if m.ListPayeesErr != nil {
		return nil, m.ListPayeesErr
	}
	return append([]model.Payee(nil), m.Payees...), nil
}

func (m *MockRepository) ListClients() ([]model.Client, error) {
	return append([]model.Client(nil), m.Clients...), nil
}

func (m *MockRepository) ListProjects() ([]model.Project, error) {
	return append([]model.Project(nil), m.Projects...), nil
}

func (m *MockRepository) ListProjectAliases() ([]model.ProjectAlias, error) {
	var active []model.ProjectAlias
	for _, a := range m.Aliases {
		if a.Active {
			active = append(active, a)
		}
	}
	return active, nil
}

func (m *MockRepository) ListCategoryRules() ([]model.CategoryRule, error) {
	return append([]model.CategoryRule(nil), m.CategoryRules...), nil
}

func (m *MockRepository) ListExpensesByDateRange(from, to time.Time) ([]model.Expense, error) {
	if m.ListExpensesErr != nil {
		return nil, m.ListExpensesErr
	}
	var out []model.Expense
	for _, e := range m.Expenses {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) ListRevenuesByDateRange(from, to time.Time) ([]model.Revenue, error) {
	if m.ListRevenuesErr != nil {
		return nil, m.ListRevenuesErr
	}
	var out []model.Revenue
	for _, r := range m.Revenues {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRepository) ListAllocationCandidates(projectID string) ([]model.LineItem, error) {
	var out []model.LineItem
	for _, item := range m.LineItems {
		if item.ProjectID == projectID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockRepository) InsertExpenses(expenses []model.Expense) error {
	m.InsertExpensesCalled = true
	if m.InsertExpensesErr != nil {
		return m.InsertExpensesErr
	}
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = m.genID("exp")
		}
		m.Expenses = append(m.Expenses, e)
	}
	return nil
}

func (m *MockRepository) InsertRevenues(revenues []model.Revenue) error {
	m.InsertRevenuesCalled = true
	if m.InsertRevenuesErr != nil {
		return m.InsertRevenuesErr
	}
	for _, r := range revenues {
		if r.ID == "" {
			r.ID = m.genID("rev")
		}
		m.Revenues = append(m.Revenues, r)
	}
	return nil
}

func (m *MockRepository) CreatePayee(payee model.Payee) (model.Payee, error) {
	m.CreatePayeeCalled = true
	if m.CreatePayeeErr != nil {
		return model.Payee{}, m.CreatePayeeErr
	}
	if payee.ID == "" {
		payee.ID = m.genID("payee")
	}
	m.Payees = append(m.Payees, payee)
	m.LastCreatedPayee = &payee
	return payee, nil
}

func (m *MockRepository) StartImportRun(sourceLabel string, dryRun bool) (string, error) {
	if m.StartRunErr != nil {
		return "", m.StartRunErr
	}
	id := m.genID("run")
	m.Runs[id] = &ImportRun{
		ID:          id,
		SourceLabel: sourceLabel,
		StartedAt:   time.Now().UTC().Format(time.RFC3339),
		DryRun:      dryRun,
		Status:      RunStatusRunning,
	}
	return id, nil
}

func (m *MockRepository) CompleteImportRun(runID, status string, counters RunCounters, resultJSON string) error {
	run, ok := m.Runs[runID]
	if !ok {
		return ErrNotFound
	}
	run.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	run.Status = status
	run.ImportedExpenses = counters.ImportedExpenses
	run.ImportedRevenues = counters.ImportedRevenues
	run.DuplicateCount = counters.DuplicateCount
	run.ErrorCount = counters.ErrorCount
	run.CreatedPayeeCount = counters.CreatedPayeeCount
	run.SuggestionCount = counters.SuggestionCount
	run.ResultJSON = resultJSON
	return nil
}

func (m *MockRepository) GetImportRun(runID string) (*ImportRun, error) {
	run, ok := m.Runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *run
	return &copied, nil
}

func (m *MockRepository) ListImportRuns(limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []ImportRun
	for _, run := range m.Runs {
		runs = append(runs, *run)
		if len(runs) >= limit {
			break
		}
	}
	return runs, nil
}

func (m *MockRepository) genID(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, m.nextID)
	m.nextID++
	return id
}
