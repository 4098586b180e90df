// Package storage provides SQLite persistence for the canonical registries,
// financial records, and import run history.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// Store provides SQLite database access. It implements the Repository
// interface.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store implements Repository
var _ Repository = (*Store)(nil)

// NewStore opens (or creates) the database at dbPath and runs all pending
// migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// ListPayees returns all canonical payees ordered by id.
func (s *Store) ListPayees() ([]model.Payee, error) {
	rows, err := s.db.Query(`SELECT id, display_name, legal_name, type FROM payees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var payees []model.Payee
	for rows.Next() {
		var p model.Payee
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.LegalName, &p.Type); err != nil {
			return nil, err
		}
		payees = append(payees, p)
	}
	return payees, rows.Err()
}

// ListClients returns all canonical clients ordered by id.
func (s *Store) ListClients() ([]model.Client, error) {
	rows, err := s.db.Query(`SELECT id, display_name, company_name FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.CompanyName); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// ListProjects returns all canonical projects ordered by id.
func (s *Store) ListProjects() ([]model.Project, error) {
	rows, err := s.db.Query(`SELECT id, number, name, COALESCE(client_id, '') FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Number, &p.Name, &p.ClientID); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListProjectAliases returns the active aliases only.
func (s *Store) ListProjectAliases() ([]model.ProjectAlias, error) {
	rows, err := s.db.Query(`
		SELECT project_id, alias, mode, active
		FROM project_aliases
		WHERE active = 1
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var aliases []model.ProjectAlias
	for rows.Next() {
		var a model.ProjectAlias
		if err := rows.Scan(&a.ProjectID, &a.Alias, &a.Mode, &a.Active); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// ListCategoryRules returns the active user-defined overrides only.
func (s *Store) ListCategoryRules() ([]model.CategoryRule, error) {
	rows, err := s.db.Query(`
		SELECT account_path, category
		FROM category_rules
		WHERE active = 1
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategoryRule
	for rows.Next() {
		var r model.CategoryRule
		if err := rows.Scan(&r.AccountPath, &r.Category); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// CreatePayee inserts a payee, assigning a fresh id.
func (s *Store) CreatePayee(payee model.Payee) (model.Payee, error) {
	if payee.ID == "" {
		payee.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO payees (id, display_name, legal_name, type)
		VALUES (?, ?, ?, ?)`,
		payee.ID, payee.DisplayName, payee.LegalName, string(payee.Type))
	if err != nil {
		return model.Payee{}, fmt.Errorf("failed to create payee: %w", err)
	}
	return payee, nil
}

// CreateClient inserts a client, assigning a fresh id when none is set.
func (s *Store) CreateClient(client model.Client) (model.Client, error) {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO clients (id, display_name, company_name)
		VALUES (?, ?, ?)`,
		client.ID, client.DisplayName, client.CompanyName)
	if err != nil {
		return model.Client{}, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// CreateProject inserts a project, assigning a fresh id when none is set.
func (s *Store) CreateProject(project model.Project) (model.Project, error) {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	clientID := sql.NullString{String: project.ClientID, Valid: project.ClientID != ""}
	_, err := s.db.Exec(`
		INSERT INTO projects (id, number, name, client_id)
		VALUES (?, ?, ?, ?)`,
		project.ID, project.Number, project.Name, clientID)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// CreateProjectAlias inserts an alias row.
func (s *Store) CreateProjectAlias(alias model.ProjectAlias) error {
	_, err := s.db.Exec(`
		INSERT INTO project_aliases (project_id, alias, mode, active)
		VALUES (?, ?, ?, ?)`,
		alias.ProjectID, alias.Alias, string(alias.Mode), alias.Active)
	return err
}

// CreateCategoryRule inserts an active override rule.
func (s *Store) CreateCategoryRule(rule model.CategoryRule) error {
	_, err := s.db.Exec(`
		INSERT INTO category_rules (account_path, category, active)
		VALUES (?, ?, 1)`,
		rule.AccountPath, string(rule.Category))
	return err
}
