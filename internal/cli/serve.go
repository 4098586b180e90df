package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildledger/import-backend/internal/api"
	"github.com/buildledger/import-backend/internal/infrastructure/logging"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

func newServeCmd() *cobra.Command {
	var port int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the import API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if port != 0 {
				cfg.Server.Port = port
			}

			loggingCfg := cfg.Observability.Logging
			if verbose {
				loggingCfg.Level = "debug"
			}
			logger := logging.NewLoggerWithSystem(loggingCfg, "api")

			store, err := storage.NewStore(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			server := api.NewServer(cfg, store, logger)

			// Graceful shutdown on SIGINT/SIGTERM.
			done := make(chan struct{})
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-quit
				logger.Info("received shutdown signal")

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", slog.Any("error", err))
				}
				close(done)
			}()

			if err := server.Start(); err != nil {
				return err
			}

			<-done
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "verbose logging")

	return cmd
}
