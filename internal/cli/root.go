// Package cli wires the importd commands: the API server and the one-shot
// CSV import.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/buildledger/import-backend/internal/infrastructure/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "importd",
	Short:         "Construction transaction import backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config file")
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the config file named by --config, falling back to
// environment variables when the file is missing.
func loadConfig() *config.Config {
	return config.LoadOrEnvWithPath(cfgPath)
}
