package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/buildledger/import-backend/internal/domain/model"
)

const dateColumnFormat = "2006-01-02"

// ListExpensesByDateRange returns expenses dated within [from, to].
func (s *Store) ListExpensesByDateRange(from, to time.Time) ([]model.Expense, error) {
	rows, err := s.db.Query(`
		SELECT id, date, amount, name, category,
		       COALESCE(payee_id, ''), COALESCE(project_id, ''), is_split
		FROM expenses
		WHERE date >= ? AND date <= ?
		ORDER BY date, id`,
		from.Format(dateColumnFormat), to.Format(dateColumnFormat))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		var date, amount string
		if err := rows.Scan(&e.ID, &date, &amount, &e.Name, &e.Category, &e.PayeeID, &e.ProjectID, &e.IsSplit); err != nil {
			return nil, err
		}
		if e.Date, err = time.Parse(dateColumnFormat, date); err != nil {
			return nil, fmt.Errorf("bad date on expense %s: %w", e.ID, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount on expense %s: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListRevenuesByDateRange returns revenues dated within [from, to].
func (s *Store) ListRevenuesByDateRange(from, to time.Time) ([]model.Revenue, error) {
	rows, err := s.db.Query(`
		SELECT id, date, amount, name, invoice_number,
		       COALESCE(client_id, ''), COALESCE(project_id, '')
		FROM revenues
		WHERE date >= ? AND date <= ?
		ORDER BY date, id`,
		from.Format(dateColumnFormat), to.Format(dateColumnFormat))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var revenues []model.Revenue
	for rows.Next() {
		var r model.Revenue
		var date, amount string
		if err := rows.Scan(&r.ID, &date, &amount, &r.Name, &r.InvoiceNumber, &r.ClientID, &r.ProjectID); err != nil {
			return nil, err
		}
		if r.Date, err = time.Parse(dateColumnFormat, date); err != nil {
			return nil, fmt.Errorf("bad date on revenue %s: %w", r.ID, err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount on revenue %s: %w", r.ID, err)
		}
		revenues = append(revenues, r)
	}
	return revenues, rows.Err()
}

// InsertExpenses inserts the batch in a single transaction. Records without
// an id are assigned one.
func (s *Store) InsertExpenses(expenses []model.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO expenses (id, date, amount, name, category, payee_id, project_id, is_split)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range expenses {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		_, err := stmt.Exec(
			e.ID,
			e.Date.Format(dateColumnFormat),
			e.Amount.Abs().StringFixed(2),
			e.Name,
			string(e.Category),
			nullable(e.PayeeID),
			nullable(e.ProjectID),
			e.IsSplit,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert expense batch: %w", err)
		}
	}

	return tx.Commit()
}

// InsertRevenues inserts the batch in a single transaction.
func (s *Store) InsertRevenues(revenues []model.Revenue) error {
	if len(revenues) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO revenues (id, date, amount, name, invoice_number, client_id, project_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range revenues {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		_, err := stmt.Exec(
			r.ID,
			r.Date.Format(dateColumnFormat),
			r.Amount.Abs().StringFixed(2),
			r.Name,
			r.InvoiceNumber,
			nullable(r.ClientID),
			nullable(r.ProjectID),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert revenue batch: %w", err)
		}
	}

	return tx.Commit()
}

// ListAllocationCandidates returns a project's candidate allocation targets
// from the three sources in a fixed order: estimate items without an
// accepted quote, accepted-quote items, then approved change-order items.
func (s *Store) ListAllocationCandidates(projectID string) ([]model.LineItem, error) {
	rows, err := s.db.Query(`
		SELECT ei.id, e.project_id, 'estimate', ei.description, ei.category, ei.amount, ''
		FROM estimate_items ei
		JOIN estimates e ON e.id = ei.estimate_id
		WHERE e.project_id = ? AND e.is_current = 1 AND ei.has_accepted_quote = 0

		UNION ALL

		SELECT qi.id, q.project_id, 'quote', qi.description, qi.category, qi.amount, q.payee_name
		FROM quote_items qi
		JOIN quotes q ON q.id = qi.quote_id
		WHERE q.project_id = ? AND q.status = 'accepted'

		UNION ALL

		SELECT ci.id, c.project_id, 'change_order', ci.description, ci.category, ci.amount, c.payee_name
		FROM change_order_items ci
		JOIN change_orders c ON c.id = ci.change_order_id
		WHERE c.project_id = ? AND c.status = 'approved'`,
		projectID, projectID, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var item model.LineItem
		var source, amount string
		if err := rows.Scan(&item.ID, &item.ProjectID, &source, &item.Description, &item.Category, &amount, &item.PayeeName); err != nil {
			return nil, err
		}
		item.Source = model.LineItemSource(source)
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount on line item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
