package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowKind separates expense rows from revenue rows.
type RowKind string

const (
	KindExpense RowKind = "expense"
	KindRevenue RowKind = "revenue"
)

// Row is one validated line from the uploaded export. The CSV layer converts
// raw string maps into this shape before any matching logic runs.
//
// Date is a calendar date pinned to UTC midnight. Amount is always a
// non-negative magnitude; direction is implied by the transaction type.
type Row struct {
	Line            int             `json:"line"`
	Date            time.Time       `json:"date"`
	TxnType         string          `json:"txn_type"`
	Amount          decimal.Decimal `json:"amount"`
	Name            string          `json:"name"`
	ProjectToken    string          `json:"project_token,omitempty"`
	AccountFullName string          `json:"account_full_name,omitempty"`
	AccountName     string          `json:"account_name,omitempty"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
}

// RowError records a row that failed validation. The batch continues
// without it.
type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}
