package storage

import (
	"errors"
	"time"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository defines the complete storage interface. It is composed from the
// narrow interfaces the import pipeline actually depends on, which keeps
// mocks small and swapping implementations straightforward.
type Repository interface {
	RegistryReader
	RecordReader
	RecordWriter
	RunRecorder
	Close() error
}

// RegistryReader loads the canonical registries an import run matches
// against. All lists are immutable-per-run snapshots.
type RegistryReader interface {
	// ListPayees returns all canonical payees.
	ListPayees() ([]model.Payee, error)

	// ListClients returns all canonical clients.
	ListClients() ([]model.Client, error)

	// ListProjects returns all canonical projects.
	ListProjects() ([]model.Project, error)

	// ListProjectAliases returns the active project aliases.
	ListProjectAliases() ([]model.ProjectAlias, error)

	// ListCategoryRules returns the active user-defined category overrides.
	ListCategoryRules() ([]model.CategoryRule, error)
}

// RecordReader fetches persisted financial records.
type RecordReader interface {
	// ListExpensesByDateRange returns expenses dated within [from, to].
	ListExpensesByDateRange(from, to time.Time) ([]model.Expense, error)

	// ListRevenuesByDateRange returns revenues dated within [from, to].
	ListRevenuesByDateRange(from, to time.Time) ([]model.Revenue, error)

	// ListAllocationCandidates returns a project's candidate allocation
	// targets: current-estimate line items with no accepted quote,
	// accepted-quote line items, and approved change-order line items.
	ListAllocationCandidates(projectID string) ([]model.LineItem, error)
}

// RecordWriter persists the records an import run produces.
type RecordWriter interface {
	// InsertExpenses inserts the batch in one transaction.
	InsertExpenses(expenses []model.Expense) error

	// InsertRevenues inserts the batch in one transaction.
	InsertRevenues(revenues []model.Revenue) error

	// CreatePayee inserts an auto-created payee and returns it with its
	// assigned id.
	CreatePayee(payee model.Payee) (model.Payee, error)
}

// RunRecorder tracks import runs for the API history views.
type RunRecorder interface {
	// StartImportRun records the start of a run and returns the run ID.
	StartImportRun(sourceLabel string, dryRun bool) (string, error)

	// CompleteImportRun records the outcome of a run.
	CompleteImportRun(runID, status string, counters RunCounters, resultJSON string) error

	// GetImportRun retrieves a run by ID. Returns ErrNotFound when missing.
	GetImportRun(runID string) (*ImportRun, error)

	// ListImportRuns returns recent runs, newest first.
	ListImportRuns(limit int) ([]ImportRun, error)
}
