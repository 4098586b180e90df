// Package bankcsv converts an uploaded bank/accounting CSV export into
// validated domain rows. All shape problems are caught here, at the ingress
// boundary: a malformed row becomes a RowError and the file keeps parsing.
package bankcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// Column headers the export is expected to carry. Matching is
// case-insensitive and ignores surrounding whitespace.
const (
	headerDate        = "date"
	headerTxnType     = "transaction type"
	headerAmount      = "amount"
	headerName        = "name"
	headerProject     = "project/wo #"
	headerAccountFull = "account full name"
	headerAccount     = "account name"
	headerInvoice     = "invoice #"
)

// dateFormats are the layouts the export is known to use.
var dateFormats = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// Parse reads the export and returns validated rows plus per-row errors.
// The returned error covers file-level problems only (no header, unreadable
// stream); row problems never abort the file.
func Parse(r io.Reader) ([]model.Row, []model.RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := columns[headerDate]; !ok {
		return nil, nil, fmt.Errorf("missing required column %q", headerDate)
	}
	if _, ok := columns[headerAmount]; !ok {
		return nil, nil, fmt.Errorf("missing required column %q", headerAmount)
	}

	var rows []model.Row
	var rowErrs []model.RowError

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, model.RowError{Line: line, Field: "row", Message: err.Error()})
			continue
		}

		row, rowErr := buildRow(line, record, columns)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

func buildRow(line int, record []string, columns map[string]int) (model.Row, *model.RowError) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rawDate := field(headerDate)
	if rawDate == "" {
		return model.Row{}, &model.RowError{Line: line, Field: "date", Message: "date is required"}
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return model.Row{}, &model.RowError{Line: line, Field: "date", Message: "unrecognized date", Value: rawDate}
	}

	rawAmount := field(headerAmount)
	if rawAmount == "" {
		return model.Row{}, &model.RowError{Line: line, Field: "amount", Message: "amount is required"}
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return model.Row{}, &model.RowError{Line: line, Field: "amount", Message: "unrecognized amount", Value: rawAmount}
	}

	return model.Row{
		Line:            line,
		Date:            date,
		TxnType:         field(headerTxnType),
		Amount:          amount,
		Name:            field(headerName),
		ProjectToken:    field(headerProject),
		AccountFullName: field(headerAccountFull),
		AccountName:     field(headerAccount),
		InvoiceNumber:   field(headerInvoice),
	}, nil
}

// parseDate pins the calendar date to UTC midnight, keeping it
// timezone-independent.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount strips currency formatting ($, thousands separators,
// parenthesized negatives) and returns the non-negative magnitude.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)

	negative := strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")")
	if negative {
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Abs(), nil
}
