package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_line_item_tables",
		Up:      migration002AddLineItemTables,
	},
	{
		Version: 3,
		Name:    "add_import_runs_table",
		Up:      migration003AddImportRunsTable,
	},
}

// runMigrations executes all pending migrations
func (s *Store) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Store) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// migration001InitialSchema creates the registry and record tables.
// Monetary amounts are stored as TEXT decimal strings so values survive the
// round trip without float drift; dates are TEXT in 2006-01-02 form, which
// sorts and ranges lexicographically.
func migration001InitialSchema(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payees (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			legal_name TEXT DEFAULT '',
			type TEXT DEFAULT 'other',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			company_name TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			number TEXT NOT NULL,
			name TEXT NOT NULL,
			client_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_projects_number ON projects(number)`,

		`CREATE TABLE IF NOT EXISTS project_aliases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT NOT NULL,
			alias TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT 'exact',
			active BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_project_aliases_project
		 ON project_aliases(project_id)`,

		`CREATE TABLE IF NOT EXISTS category_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_path TEXT NOT NULL,
			category TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			amount TEXT NOT NULL,
			name TEXT DEFAULT '',
			category TEXT NOT NULL,
			payee_id TEXT,
			project_id TEXT,
			is_split BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (payee_id) REFERENCES payees(id),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date)`,

		`CREATE TABLE IF NOT EXISTS revenues (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			amount TEXT NOT NULL,
			name TEXT DEFAULT '',
			invoice_number TEXT DEFAULT '',
			client_id TEXT,
			project_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_revenues_date ON revenues(date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddLineItemTables creates the estimate/quote/change-order
// tables allocation suggestions draw candidates from.
func migration002AddLineItemTables(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS estimates (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			is_current BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE TABLE IF NOT EXISTS estimate_items (
			id TEXT PRIMARY KEY,
			estimate_id TEXT NOT NULL,
			description TEXT DEFAULT '',
			category TEXT NOT NULL,
			amount TEXT NOT NULL,
			has_accepted_quote BOOLEAN NOT NULL DEFAULT 0,
			FOREIGN KEY (estimate_id) REFERENCES estimates(id)
		)`,

		`CREATE TABLE IF NOT EXISTS quotes (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			payee_name TEXT DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE TABLE IF NOT EXISTS quote_items (
			id TEXT PRIMARY KEY,
			quote_id TEXT NOT NULL,
			description TEXT DEFAULT '',
			category TEXT NOT NULL,
			amount TEXT NOT NULL,
			FOREIGN KEY (quote_id) REFERENCES quotes(id)
		)`,

		`CREATE TABLE IF NOT EXISTS change_orders (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			payee_name TEXT DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE TABLE IF NOT EXISTS change_order_items (
			id TEXT PRIMARY KEY,
			change_order_id TEXT NOT NULL,
			description TEXT DEFAULT '',
			category TEXT NOT NULL,
			amount TEXT NOT NULL,
			FOREIGN KEY (change_order_id) REFERENCES change_orders(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create line item tables: %w", err)
		}
	}

	return nil
}

// migration003AddImportRunsTable creates the import_runs table
func migration003AddImportRunsTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS import_runs (
			id TEXT PRIMARY KEY,
			source_label TEXT DEFAULT '',
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			dry_run BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running',
			imported_expenses INTEGER DEFAULT 0,
			imported_revenues INTEGER DEFAULT 0,
			duplicate_count INTEGER DEFAULT 0,
			error_count INTEGER DEFAULT 0,
			created_payee_count INTEGER DEFAULT 0,
			suggestion_count INTEGER DEFAULT 0,
			result_json TEXT DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_import_runs_started
		 ON import_runs(started_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
