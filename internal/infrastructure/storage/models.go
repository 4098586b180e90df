package storage

// ImportRun is one recorded invocation of the import pipeline.
type ImportRun struct {
	ID          string `json:"id"`
	SourceLabel string `json:"source_label,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	DryRun      bool   `json:"dry_run"`
	Status      string `json:"status"`

	ImportedExpenses    int `json:"imported_expenses"`
	ImportedRevenues    int `json:"imported_revenues"`
	DuplicateCount      int `json:"duplicate_count"`
	ErrorCount          int `json:"error_count"`
	CreatedPayeeCount   int `json:"created_payee_count"`
	SuggestionCount     int `json:"suggestion_count"`

	// ResultJSON holds the full ImportResult for retrieval by the UI.
	ResultJSON string `json:"result_json,omitempty"`
}

// RunCounters are the aggregate counts recorded when a run completes.
type RunCounters struct {
	ImportedExpenses  int
	ImportedRevenues  int
	DuplicateCount    int
	ErrorCount        int
	CreatedPayeeCount int
	SuggestionCount   int
}

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusDryRun    = "dry-run"
)
