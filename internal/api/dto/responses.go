package dto

import (
	"time"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ImportRunResponse represents a recorded import run.
type ImportRunResponse struct {
	ID          string `json:"id"`
	SourceLabel string `json:"source_label,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	DryRun      bool   `json:"dry_run"`
	Status      string `json:"status"`

	ImportedExpenses  int `json:"imported_expenses"`
	ImportedRevenues  int `json:"imported_revenues"`
	DuplicateCount    int `json:"duplicate_count"`
	ErrorCount        int `json:"error_count"`
	CreatedPayeeCount int `json:"created_payee_count"`
	SuggestionCount   int `json:"suggestion_count"`
}

// ImportRunListResponse is returned when listing import runs.
type ImportRunListResponse struct {
	Runs  []ImportRunResponse `json:"runs"`
	Count int                 `json:"count"`
}

// ToImportRunResponse converts a storage ImportRun to an API response.
func ToImportRunResponse(run storage.ImportRun) ImportRunResponse {
	return ImportRunResponse{
		ID:                run.ID,
		SourceLabel:       run.SourceLabel,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		DryRun:            run.DryRun,
		Status:            run.Status,
		ImportedExpenses:  run.ImportedExpenses,
		ImportedRevenues:  run.ImportedRevenues,
		DuplicateCount:    run.DuplicateCount,
		ErrorCount:        run.ErrorCount,
		CreatedPayeeCount: run.CreatedPayeeCount,
		SuggestionCount:   run.SuggestionCount,
	}
}

// PayeeListResponse is returned when browsing the payee registry.
type PayeeListResponse struct {
	Payees []model.Payee `json:"payees"`
	Count  int           `json:"count"`
}

// ClientListResponse is returned when browsing the client registry.
type ClientListResponse struct {
	Clients []model.Client `json:"clients"`
	Count   int            `json:"count"`
}

// ProjectListResponse is returned when browsing the project registry.
type ProjectListResponse struct {
	Projects []model.Project `json:"projects"`
	Count    int             `json:"count"`
}

// ResolveResponse is the match preview for one free-text name: the accepted
// candidate when one cleared the auto-accept threshold, plus everything in
// the review band.
type ResolveResponse struct {
	Input      string                 `json:"input"`
	Accepted   *model.MatchCandidate  `json:"accepted,omitempty"`
	Candidates []model.MatchCandidate `json:"candidates"`
}

// AllocationSuggestionsResponse is returned by the bulk allocation endpoint.
type AllocationSuggestionsResponse struct {
	ProjectID   string                       `json:"project_id"`
	Suggestions []model.AllocationSuggestion `json:"suggestions"`
	Count       int                          `json:"count"`
}
