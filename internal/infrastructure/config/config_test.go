package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "buildledger.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 75.0, cfg.Import.AutoAcceptThreshold)
	assert.Equal(t, 40.0, cfg.Import.ReviewThreshold)
	assert.Equal(t, 85.0, cfg.Import.ProjectNumberThreshold)
	assert.Equal(t, 0.01, cfg.Import.ReconcileTolerance)
	assert.Equal(t, "Labor", cfg.Import.ExcludedCategory)
	assert.Equal(t, 1, cfg.Import.DateBufferDays)
	assert.Equal(t, 75.0, cfg.Import.AllocationFloor)
	assert.Contains(t, cfg.Import.RevenueTransactionTypes, "invoice")
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "custom.db"
import:
  auto_accept_threshold: 80
  excluded_category: "Management"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 80.0, cfg.Import.AutoAcceptThreshold)
	assert.Equal(t, "Management", cfg.Import.ExcludedCategory)
	// Untouched fields keep their defaults.
	assert.Equal(t, 40.0, cfg.Import.ReviewThreshold)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("IMPORT_DB_PATH", "test.db")
	os.Setenv("IMPORT_PORT", "9090")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("IMPORT_DB_PATH")
		os.Unsetenv("IMPORT_PORT")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg := LoadFromEnv()

	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("IMPORT_DB_PATH")
	os.Unsetenv("IMPORT_PORT")

	cfg := LoadFromEnv()

	assert.Equal(t, "buildledger.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	os.Setenv("IMPORT_DB_PATH", "fallback.db")
	defer os.Unsetenv("IMPORT_DB_PATH")

	cfg := LoadOrEnvWithPath("nonexistent.yaml")

	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_DB_PATH}"
import:
  gas_project_number: "${TEST_GAS_PROJECT}"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("TEST_DB_PATH", "expanded.db")
	os.Setenv("TEST_GAS_PROJECT", "77-001")
	defer func() {
		os.Unsetenv("TEST_DB_PATH")
		os.Unsetenv("TEST_GAS_PROJECT")
	}()

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "77-001", cfg.Import.GasProjectNumber)
}
