package storage

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// StartImportRun records the start of an import run and returns the run ID.
func (s *Store) StartImportRun(sourceLabel string, dryRun bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO import_runs (id, source_label, dry_run, status)
		VALUES (?, ?, ?, ?)`,
		id, sourceLabel, dryRun, RunStatusRunning)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CompleteImportRun records the completion of an import run.
func (s *Store) CompleteImportRun(runID, status string, counters RunCounters, resultJSON string) error {
	_, err := s.db.Exec(`
		UPDATE import_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    status = ?,
		    imported_expenses = ?,
		    imported_revenues = ?,
		    duplicate_count = ?,
		    error_count = ?,
		    created_payee_count = ?,
		    suggestion_count = ?,
		    result_json = ?
		WHERE id = ?`,
		status,
		counters.ImportedExpenses,
		counters.ImportedRevenues,
		counters.DuplicateCount,
		counters.ErrorCount,
		counters.CreatedPayeeCount,
		counters.SuggestionCount,
		resultJSON,
		runID,
	)
	return err
}

// GetImportRun retrieves a run by ID.
func (s *Store) GetImportRun(runID string) (*ImportRun, error) {
	run := &ImportRun{}
	var completedAt sql.NullString
	err := s.db.QueryRow(`
		SELECT id, source_label, started_at, completed_at, dry_run, status,
		       imported_expenses, imported_revenues, duplicate_count,
		       error_count, created_payee_count, suggestion_count, result_json
		FROM import_runs WHERE id = ?`, runID).Scan(
		&run.ID,
		&run.SourceLabel,
		&run.StartedAt,
		&completedAt,
		&run.DryRun,
		&run.Status,
		&run.ImportedExpenses,
		&run.ImportedRevenues,
		&run.DuplicateCount,
		&run.ErrorCount,
		&run.CreatedPayeeCount,
		&run.SuggestionCount,
		&run.ResultJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = completedAt.String
	}
	return run, nil
}

// ListImportRuns returns recent runs, newest first. The heavy result_json
// column is omitted from list views.
func (s *Store) ListImportRuns(limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, source_label, started_at, completed_at, dry_run, status,
		       imported_expenses, imported_revenues, duplicate_count,
		       error_count, created_payee_count, suggestion_count
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ImportRun
	for rows.Next() {
		var run ImportRun
		var completedAt sql.NullString
		err := rows.Scan(
			&run.ID,
			&run.SourceLabel,
			&run.StartedAt,
			&completedAt,
			&run.DryRun,
			&run.Status,
			&run.ImportedExpenses,
			&run.ImportedRevenues,
			&run.DuplicateCount,
			&run.ErrorCount,
			&run.CreatedPayeeCount,
			&run.SuggestionCount,
		)
		if err != nil {
			return nil, err
		}
		if completedAt.Valid {
			run.CompletedAt = completedAt.String
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
