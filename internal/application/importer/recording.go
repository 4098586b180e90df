package importer

import (
	"encoding/json"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// Run-history recording. Recording failures are logged, never fatal: an
// import that cannot write its audit row still imports.

// startRun records the start of a run and returns its id, or "" when the
// record could not be written.
func (o *Orchestrator) startRun(opts Options) string {
	runID, err := o.repo.StartImportRun(opts.SourceLabel, opts.DryRun)
	if err != nil {
		o.logger.Error("Failed to record import run start", "source", opts.SourceLabel, "error", err)
		return ""
	}
	return runID
}

// completeRun records the run outcome with aggregate counters and the full
// result as JSON.
func (o *Orchestrator) completeRun(runID, status string, result *model.ImportResult) {
	if runID == "" {
		return
	}

	counters := storage.RunCounters{
		ImportedExpenses:  len(result.Expenses),
		ImportedRevenues:  len(result.Revenues),
		DuplicateCount:    duplicateCount(result),
		ErrorCount:        len(result.Errors),
		CreatedPayeeCount: len(result.CreatedPayees),
		SuggestionCount:   len(result.Suggestions),
	}

	resultJSON := ""
	if data, err := json.Marshal(result); err != nil {
		o.logger.Error("Failed to marshal import result", "run_id", runID, "error", err)
	} else {
		resultJSON = string(data)
	}

	if err := o.repo.CompleteImportRun(runID, status, counters, resultJSON); err != nil {
		o.logger.Error("Failed to record import run completion", "run_id", runID, "status", status, "error", err)
	}
}
