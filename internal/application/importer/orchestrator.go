package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/buildledger/import-backend/internal/domain/allocator"
	"github.com/buildledger/import-backend/internal/domain/classifier"
	"github.com/buildledger/import-backend/internal/domain/dedupe"
	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/domain/resolver"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// registrySnapshot is the canonical data one run matches against, loaded once
// before any row is processed.
type registrySnapshot struct {
	payees   []model.Payee
	clients  []model.Client
	projects []model.Project
	aliases  []model.ProjectAlias
	rules    []model.CategoryRule

	expenses []model.Expense
	revenues []model.Revenue
}

// Run executes the import pipeline over parsed rows in a single pass:
// stream split, in-file dedupe, registry load, per-row classification and
// entity resolution, persisted-duplicate check, reconciliation, then the
// batch write (skipped on dry run).
//
// Row processing is strictly sequential: later rows may match payees created
// by earlier rows, and the duplicate key maps are order-dependent.
func (o *Orchestrator) Run(ctx context.Context, rows []model.Row, rowErrs []model.RowError, opts Options) (*model.ImportResult, error) {
	runID := o.startRun(opts)

	result := &model.ImportResult{
		Errors: append([]model.RowError(nil), rowErrs...),
	}

	expenseRows, revenueRows := o.splitStreams(rows)
	o.logger.Info("Starting import",
		"source", opts.SourceLabel,
		"expense_rows", len(expenseRows),
		"revenue_rows", len(revenueRows),
		"row_errors", len(rowErrs),
		"dry_run", opts.DryRun,
	)

	uniqueExpenses, dupExpenses := dedupe.SplitUnique(expenseRows, dedupe.ExpenseRowKey)
	uniqueRevenues, dupRevenues := dedupe.SplitUnique(revenueRows, dedupe.RevenueRowKey)
	result.InFileDuplicateExpenses = dupExpenses
	result.InFileDuplicateRevenues = dupRevenues

	snapshot, err := o.loadSnapshot(ctx, rows)
	if err != nil {
		o.completeRun(runID, storage.RunStatusFailed, result)
		return nil, fmt.Errorf("failed to load registries: %w", err)
	}

	cls := classifier.New(o.tables, snapshot.rules)
	res := resolver.New(o.resolverConfig(), snapshot.payees, snapshot.clients, snapshot.projects, snapshot.aliases)

	expenseIdx := dedupe.ExpenseIndex(snapshot.expenses)
	revenueIdx := dedupe.RevenueIndex(snapshot.revenues)

	payeeNames := make(map[string]string, len(snapshot.payees))
	for _, p := range snapshot.payees {
		payeeNames[p.ID] = p.DisplayName
	}

	for _, row := range uniqueExpenses {
		o.processExpenseRow(row, cls, res, expenseIdx, payeeNames, opts, result)
	}
	for _, row := range uniqueRevenues {
		o.processRevenueRow(row, cls, res, revenueIdx, result)
	}

	result.ImportedExpenses = len(result.Expenses)
	result.ImportedRevenues = len(result.Revenues)
	result.TierStats = cls.TierStats()
	result.CategoryMappingUsed = cls.MappingUsed()
	result.UnmappedAccounts = cls.UnmappedAccounts()

	tolerance := decimal.NewFromFloat(o.cfg.Import.ReconcileTolerance)
	result.ExpenseReconciliation = dedupe.ReconcileExpenses(
		result.PersistedDuplicateExpenses,
		expensesByID(snapshot.expenses),
		model.Category(o.cfg.Import.ExcludedCategory),
		tolerance,
	)
	result.RevenueReconciliation = dedupe.ReconcileRevenues(
		result.PersistedDuplicateRevenues,
		revenuesByID(snapshot.revenues),
		tolerance,
	)

	if opts.SuggestAllocations {
		o.suggestAllocations(result, payeeNames)
	}

	if !opts.DryRun {
		if err := o.persist(result); err != nil {
			o.completeRun(runID, storage.RunStatusFailed, result)
			return nil, fmt.Errorf("failed to persist batch: %w", err)
		}
	}

	status := storage.RunStatusCompleted
	if opts.DryRun {
		status = storage.RunStatusDryRun
	}
	o.completeRun(runID, status, result)

	o.logger.Info("Import finished",
		"source", opts.SourceLabel,
		"imported_expenses", result.ImportedExpenses,
		"imported_revenues", result.ImportedRevenues,
		"duplicates", duplicateCount(result),
		"errors", len(result.Errors),
	)

	return result, nil
}

// splitStreams routes rows with a revenue transaction type to the revenue
// stream; everything else is an expense.
func (o *Orchestrator) splitStreams(rows []model.Row) (expenses, revenues []model.Row) {
	revenueTypes := make(map[string]bool, len(o.cfg.Import.RevenueTransactionTypes))
	for _, t := range o.cfg.Import.RevenueTransactionTypes {
		revenueTypes[strings.ToLower(strings.TrimSpace(t))] = true
	}

	for _, row := range rows {
		if revenueTypes[strings.ToLower(strings.TrimSpace(row.TxnType))] {
			revenues = append(revenues, row)
		} else {
			expenses = append(expenses, row)
		}
	}
	return expenses, revenues
}

// loadSnapshot loads the registries and the persisted records overlapping the
// upload's date range, concurrently. Any single failure is fatal for the run.
func (o *Orchestrator) loadSnapshot(ctx context.Context, rows []model.Row) (*registrySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := &registrySnapshot{}

	var g errgroup.Group
	g.Go(func() error {
		var err error
		snapshot.payees, err = o.repo.ListPayees()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.clients, err = o.repo.ListClients()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.projects, err = o.repo.ListProjects()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.aliases, err = o.repo.ListProjectAliases()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.rules, err = o.repo.ListCategoryRules()
		return err
	})

	if from, to, ok := dateRange(rows, o.cfg.Import.DateBufferDays); ok {
		g.Go(func() error {
			var err error
			snapshot.expenses, err = o.repo.ListExpensesByDateRange(from, to)
			return err
		})
		g.Go(func() error {
			var err error
			snapshot.revenues, err = o.repo.ListRevenuesByDateRange(from, to)
			return err
		})
	}

	return snapshot, g.Wait()
}

// dateRange returns the min/max row dates widened by bufferDays on both ends.
func dateRange(rows []model.Row, bufferDays int) (from, to time.Time, ok bool) {
	for _, row := range rows {
		if !ok {
			from, to, ok = row.Date, row.Date, true
			continue
		}
		if row.Date.Before(from) {
			from = row.Date
		}
		if row.Date.After(to) {
			to = row.Date
		}
	}
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from.AddDate(0, 0, -bufferDays), to.AddDate(0, 0, bufferDays), true
}

func (o *Orchestrator) resolverConfig() resolver.Config {
	cfg := resolver.DefaultConfig()
	cfg.AutoAcceptThreshold = o.cfg.Import.AutoAcceptThreshold
	cfg.ReviewThreshold = o.cfg.Import.ReviewThreshold
	cfg.ProjectNumberThreshold = o.cfg.Import.ProjectNumberThreshold
	cfg.GasProjectNumber = o.cfg.Import.GasProjectNumber
	cfg.GeneralAdminProjectNumber = o.cfg.Import.GeneralAdminProjectNumber
	return cfg
}

// processExpenseRow classifies one unique expense row, resolves its payee and
// project, and either flags it as a persisted duplicate or appends it to the
// import set.
func (o *Orchestrator) processExpenseRow(
	row model.Row,
	cls *classifier.Classifier,
	res *resolver.Resolver,
	idx map[string]model.Expense,
	payeeNames map[string]string,
	opts Options,
	result *model.ImportResult,
) {
	category, _ := cls.Classify(accountPath(row), row.Name)

	var payeeID, payeeName string
	var confidence float64
	var matchedBy model.MatchType

	match := res.ResolvePayee(row.Name)
	switch {
	case match.Accepted != nil:
		payeeID = match.Accepted.EntityID
		payeeName = match.Accepted.Name
		confidence = match.Accepted.Confidence
		matchedBy = match.Accepted.Type
		if matchedBy == model.MatchFuzzy {
			result.FuzzyMatches = append(result.FuzzyMatches, model.FuzzyMatch{
				Line:       row.Line,
				Input:      row.Name,
				EntityID:   payeeID,
				EntityName: payeeName,
				Confidence: confidence,
			})
		}

	case len(match.Candidates) > 0:
		result.Suggestions = append(result.Suggestions, model.Suggestion{
			Line:       row.Line,
			Input:      row.Name,
			Candidates: match.Candidates,
		})

	case opts.AutoCreatePayees && strings.TrimSpace(row.Name) != "":
		created, err := o.repo.CreatePayee(model.Payee{
			DisplayName: strings.TrimSpace(row.Name),
			Type:        resolver.InferPayeeType(accountPath(row)),
		})
		if err != nil {
			o.logger.Error("Failed to create payee", "line", row.Line, "name", row.Name, "error", err)
			result.Errors = append(result.Errors, model.RowError{
				Line:    row.Line,
				Field:   "name",
				Message: "failed to create payee: " + err.Error(),
				Value:   row.Name,
			})
			break
		}
		res.AddPayee(created)
		payeeNames[created.ID] = created.DisplayName
		result.CreatedPayees = append(result.CreatedPayees, created)
		payeeID = created.ID
		payeeName = created.DisplayName
		confidence = 100
		matchedBy = model.MatchExact
	}

	if dup, ok := dedupe.FindPersistedExpense(row, payeeName, idx); ok {
		result.PersistedDuplicateExpenses = append(result.PersistedDuplicateExpenses, dup)
		return
	}

	var projectID string
	if project, _ := res.ResolveProject(row.ProjectToken); project != nil {
		projectID = project.ID
	}

	result.Expenses = append(result.Expenses, model.ClassifiedTransaction{
		Row:             row,
		Kind:            model.KindExpense,
		Category:        category,
		PayeeID:         payeeID,
		ProjectID:       projectID,
		MatchConfidence: confidence,
		MatchedBy:       matchedBy,
	})
	if projectID == "" {
		result.UnassociatedExpenses++
	}
}

// processRevenueRow resolves one unique revenue row against the client
// registry. Clients are never auto-created.
func (o *Orchestrator) processRevenueRow(
	row model.Row,
	cls *classifier.Classifier,
	res *resolver.Resolver,
	idx map[string]model.Revenue,
	result *model.ImportResult,
) {
	category, _ := cls.Classify(accountPath(row), row.Name)

	var clientID string
	var confidence float64
	var matchedBy model.MatchType

	match := res.ResolveClient(row.Name)
	switch {
	case match.Accepted != nil:
		clientID = match.Accepted.EntityID
		confidence = match.Accepted.Confidence
		matchedBy = match.Accepted.Type
		if matchedBy == model.MatchFuzzy {
			result.FuzzyMatches = append(result.FuzzyMatches, model.FuzzyMatch{
				Line:       row.Line,
				Input:      row.Name,
				EntityID:   clientID,
				EntityName: match.Accepted.Name,
				Confidence: confidence,
			})
		}
	case len(match.Candidates) > 0:
		result.Suggestions = append(result.Suggestions, model.Suggestion{
			Line:       row.Line,
			Input:      row.Name,
			Candidates: match.Candidates,
		})
	}

	if dup, ok := dedupe.FindPersistedRevenue(row, idx); ok {
		result.PersistedDuplicateRevenues = append(result.PersistedDuplicateRevenues, dup)
		return
	}

	var projectID string
	if project, _ := res.ResolveProject(row.ProjectToken); project != nil {
		projectID = project.ID
	}

	result.Revenues = append(result.Revenues, model.ClassifiedTransaction{
		Row:             row,
		Kind:            model.KindRevenue,
		Category:        category,
		ClientID:        clientID,
		ProjectID:       projectID,
		MatchConfidence: confidence,
		MatchedBy:       matchedBy,
	})
	if projectID == "" {
		result.UnassociatedRevenues++
	}
}

// suggestAllocations computes the best allocation target for each imported
// expense that resolved to a project. Candidates are fetched once per
// project. A fetch failure skips that project's expenses; it does not fail
// the run.
func (o *Orchestrator) suggestAllocations(result *model.ImportResult, payeeNames map[string]string) {
	byProject := make(map[string][]model.LineItem)
	cfg := allocator.Config{AutoAcceptFloor: o.cfg.Import.AllocationFloor}

	for _, txn := range result.Expenses {
		if txn.ProjectID == "" {
			continue
		}

		candidates, ok := byProject[txn.ProjectID]
		if !ok {
			var err error
			candidates, err = o.repo.ListAllocationCandidates(txn.ProjectID)
			if err != nil {
				o.logger.Error("Failed to load allocation candidates", "project_id", txn.ProjectID, "error", err)
				byProject[txn.ProjectID] = nil
				continue
			}
			byProject[txn.ProjectID] = candidates
		}
		if len(candidates) == 0 {
			continue
		}

		payeeName := payeeNames[txn.PayeeID]
		if payeeName == "" {
			payeeName = txn.Row.Name
		}
		suggestion := allocator.Suggest(allocator.Expense{
			Line:      txn.Row.Line,
			Category:  txn.Category,
			Amount:    txn.Row.Amount,
			PayeeName: payeeName,
		}, candidates, cfg)
		if suggestion != nil {
			result.Allocations = append(result.Allocations, *suggestion)
		}
	}
}

// persist writes the classified expense and revenue batches.
func (o *Orchestrator) persist(result *model.ImportResult) error {
	expenses := make([]model.Expense, 0, len(result.Expenses))
	for _, t := range result.Expenses {
		expenses = append(expenses, model.Expense{
			Date:      t.Row.Date,
			Amount:    t.Row.Amount,
			Name:      t.Row.Name,
			Category:  t.Category,
			PayeeID:   t.PayeeID,
			ProjectID: t.ProjectID,
		})
	}
	if err := o.repo.InsertExpenses(expenses); err != nil {
		return err
	}

	revenues := make([]model.Revenue, 0, len(result.Revenues))
	for _, t := range result.Revenues {
		revenues = append(revenues, model.Revenue{
			Date:          t.Row.Date,
			Amount:        t.Row.Amount,
			Name:          t.Row.Name,
			InvoiceNumber: t.Row.InvoiceNumber,
			ClientID:      t.ClientID,
			ProjectID:     t.ProjectID,
		})
	}
	return o.repo.InsertRevenues(revenues)
}

// accountPath prefers the full account path and falls back to the short
// account name.
func accountPath(row model.Row) string {
	if row.AccountFullName != "" {
		return row.AccountFullName
	}
	return row.AccountName
}

func expensesByID(expenses []model.Expense) map[string]model.Expense {
	byID := make(map[string]model.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}
	return byID
}

func revenuesByID(revenues []model.Revenue) map[string]model.Revenue {
	byID := make(map[string]model.Revenue, len(revenues))
	for _, r := range revenues {
		byID[r.ID] = r
	}
	return byID
}

func duplicateCount(result *model.ImportResult) int {
	return len(result.InFileDuplicateExpenses) +
		len(result.InFileDuplicateRevenues) +
		len(result.PersistedDuplicateExpenses) +
		len(result.PersistedDuplicateRevenues)
}
