package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a persisted expense record. Amount is a magnitude.
type Expense struct {
	ID        string          `json:"id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Name      string          `json:"name"`
	Category  Category        `json:"category"`
	PayeeID   string          `json:"payee_id,omitempty"`
	ProjectID string          `json:"project_id,omitempty"`
	IsSplit   bool            `json:"is_split"`
	CreatedAt time.Time       `json:"created_at"`
}

// Revenue is a persisted revenue record. Amount is a magnitude.
type Revenue struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Name          string          `json:"name"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	ClientID      string          `json:"client_id,omitempty"`
	ProjectID     string          `json:"project_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineItemSource identifies where an allocation candidate came from.
type LineItemSource string

const (
	SourceEstimate    LineItemSource = "estimate"
	SourceQuote       LineItemSource = "quote"
	SourceChangeOrder LineItemSource = "change_order"
)

// LineItem is a candidate allocation target: a current-estimate line with no
// accepted quote, an accepted-quote line, or an approved change-order line.
// PayeeName is the vendor attached to quote and change-order lines; estimate
// lines carry none.
type LineItem struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Source      LineItemSource  `json:"source"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	PayeeName   string          `json:"payee_name,omitempty"`
}
