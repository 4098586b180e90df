package dedupe

import (
	"fmt"
	"strings"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// KeyFunc fingerprints one upload row.
type KeyFunc func(model.Row) string

// SplitUnique scans rows in file order. The first occurrence of each key is
// unique; later occurrences are recorded as in-file duplicates referencing
// the line that saw the key first.
func SplitUnique(rows []model.Row, key KeyFunc) (unique []model.Row, duplicates []model.DuplicateRecord) {
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		k := key(row)
		if firstLine, ok := seen[k]; ok {
			duplicates = append(duplicates, model.DuplicateRecord{
				Row:    row,
				Key:    k,
				Reason: fmt.Sprintf("duplicate of line %d in this file", firstLine),
			})
			continue
		}
		seen[k] = row.Line
		unique = append(unique, row)
	}
	return unique, duplicates
}

// FindPersistedExpense checks one unique expense row against the persisted
// index using up to four key strategies, in order, first hit wins:
//
//  1. the key built from the uploaded name,
//  2. the empty-name key when the uploaded name is empty,
//  3. the matched payee's canonical name when the uploaded name is empty,
//  4. the matched payee's canonical name when it case-insensitively equals
//     the uploaded name.
//
// matchedPayeeName is the canonical name of a fuzzy-matched payee, empty when
// no payee matched.
func FindPersistedExpense(row model.Row, matchedPayeeName string, idx map[string]model.Expense) (model.DuplicateRecord, bool) {
	for _, s := range expenseStrategies(row, matchedPayeeName) {
		if existing, ok := idx[s.key]; ok {
			return model.DuplicateRecord{
				Row:        row,
				ExistingID: existing.ID,
				Key:        s.key,
				Reason:     s.reason,
			}, true
		}
	}
	return model.DuplicateRecord{}, false
}

type keyStrategy struct {
	key    string
	reason string
}

func expenseStrategies(row model.Row, matchedPayeeName string) []keyStrategy {
	var strategies []keyStrategy

	nameEmpty := strings.TrimSpace(row.Name) == ""
	if !nameEmpty {
		strategies = append(strategies, keyStrategy{
			key:    ExpenseKey(row.Date, row.Amount, row.Name),
			reason: "matched on uploaded name",
		})
	} else {
		strategies = append(strategies, keyStrategy{
			key:    ExpenseKey(row.Date, row.Amount, ""),
			reason: "matched with empty name",
		})
	}

	if matchedPayeeName == "" {
		return strategies
	}

	if nameEmpty {
		strategies = append(strategies, keyStrategy{
			key:    ExpenseKey(row.Date, row.Amount, matchedPayeeName),
			reason: "matched on payee name for unnamed row",
		})
	} else if strings.EqualFold(strings.TrimSpace(row.Name), matchedPayeeName) {
		strategies = append(strategies, keyStrategy{
			key:    ExpenseKey(row.Date, row.Amount, matchedPayeeName),
			reason: "matched on confirmed payee name",
		})
	}

	return strategies
}

// FindPersistedRevenue checks one unique revenue row against the persisted
// index. Revenue keys carry the invoice number, so only the uploaded-name
// strategy applies.
func FindPersistedRevenue(row model.Row, idx map[string]model.Revenue) (model.DuplicateRecord, bool) {
	key := RevenueRowKey(row)
	if existing, ok := idx[key]; ok {
		return model.DuplicateRecord{
			Row:        row,
			ExistingID: existing.ID,
			Key:        key,
			Reason:     "matched on uploaded name",
		}, true
	}
	return model.DuplicateRecord{}, false
}
