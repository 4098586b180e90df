package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/buildledger/import-backend/internal/adapters/bankcsv"
	"github.com/buildledger/import-backend/internal/application/importer"
	"github.com/buildledger/import-backend/internal/infrastructure/logging"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

func newImportCmd() *cobra.Command {
	var (
		file               string
		dryRun             bool
		suggestAllocations bool
		autoCreatePayees   bool
		verbose            bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a bank/accounting CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			loggingCfg := cfg.Observability.Logging
			if verbose {
				loggingCfg.Level = "debug"
			}
			logger := logging.NewLoggerWithSystem(loggingCfg, "import")

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer func() { _ = f.Close() }()

			rows, rowErrs, err := bankcsv.Parse(f)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}

			store, err := storage.NewStore(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			orch := importer.New(store, cfg, logger)
			result, err := orch.Run(cmd.Context(), rows, rowErrs, importer.Options{
				DryRun:             dryRun,
				SuggestAllocations: suggestAllocations,
				AutoCreatePayees:   autoCreatePayees,
				SourceLabel:        filepath.Base(file),
			})
			if err != nil {
				return err
			}

			PrintImportSummary(result, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the CSV export (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without writing records")
	cmd.Flags().BoolVar(&suggestAllocations, "suggest-allocations", false, "compute allocation suggestions for project expenses")
	cmd.Flags().BoolVar(&autoCreatePayees, "auto-create-payees", false, "create payees for unmatched expense names")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "verbose logging")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
