package cli

import (
	"fmt"
	"strings"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// PrintImportSummary prints the import result to stdout.
func PrintImportSummary(result *model.ImportResult, dryRun bool) {
	fmt.Println(strings.Repeat("-", 60))
	if dryRun {
		fmt.Println("DRY RUN - no records were written")
	}

	fmt.Printf("Imported: %d expenses (%d unassociated), %d revenues (%d unassociated)\n",
		result.ImportedExpenses,
		result.UnassociatedExpenses,
		result.ImportedRevenues,
		result.UnassociatedRevenues)

	inFile := len(result.InFileDuplicateExpenses) + len(result.InFileDuplicateRevenues)
	persisted := len(result.PersistedDuplicateExpenses) + len(result.PersistedDuplicateRevenues)
	fmt.Printf("Duplicates: %d in file, %d already imported\n", inFile, persisted)

	if len(result.CreatedPayees) > 0 {
		fmt.Printf("Created payees: %d\n", len(result.CreatedPayees))
		for _, p := range result.CreatedPayees {
			fmt.Printf("  + %s (%s)\n", p.DisplayName, p.Type)
		}
	}

	if len(result.FuzzyMatches) > 0 {
		fmt.Printf("Fuzzy matches accepted: %d\n", len(result.FuzzyMatches))
	}
	if len(result.Suggestions) > 0 {
		fmt.Printf("Rows needing review: %d\n", len(result.Suggestions))
		for _, s := range result.Suggestions {
			best := s.Candidates[0]
			fmt.Printf("  ? line %d %q -> %s (%.0f%%)\n", s.Line, s.Input, best.Name, best.Confidence)
		}
	}
	if len(result.Allocations) > 0 {
		fmt.Printf("Allocation suggestions: %d\n", len(result.Allocations))
	}

	printReconciliation("Expense", result.ExpenseReconciliation)
	printReconciliation("Revenue", result.RevenueReconciliation)

	if len(result.Errors) > 0 {
		fmt.Printf("\nRow errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - line %d %s: %s\n", e.Line, e.Field, e.Message)
		}
	}

	if len(result.UnmappedAccounts) > 0 {
		fmt.Printf("\nUnmapped accounts (%d):\n", len(result.UnmappedAccounts))
		for _, a := range result.UnmappedAccounts {
			fmt.Printf("  - %s\n", a)
		}
	}
}

func printReconciliation(label string, summary model.ReconciliationSummary) {
	if summary.DuplicateTotal.IsZero() && summary.ExpectedTotal.IsZero() {
		return
	}
	status := "OK"
	if !summary.WithinTolerance {
		status = "MISMATCH"
	}
	fmt.Printf("%s reconciliation: expected $%s, duplicates $%s (%s)\n",
		label,
		summary.ExpectedTotal.StringFixed(2),
		summary.DuplicateTotal.StringFixed(2),
		status)
}
