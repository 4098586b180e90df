// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} environment expansion
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	threshold := cfg.Import.AutoAcceptThreshold
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Import        ImportConfig        `yaml:"import"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ImportConfig holds the thresholds and policy knobs of the import engine
type ImportConfig struct {
	// AutoAcceptThreshold is the 0-100 confidence at which a fuzzy entity
	// match is accepted without review.
	AutoAcceptThreshold float64 `yaml:"auto_accept_threshold"`

	// ReviewThreshold is the 0-100 confidence below which candidates are
	// dropped from suggestions.
	ReviewThreshold float64 `yaml:"review_threshold"`

	// ProjectNumberThreshold is the Jaro-Winkler score (0-100) required for
	// a fuzzy project-number match.
	ProjectNumberThreshold float64 `yaml:"project_number_threshold"`

	// ReconcileTolerance is the cents-level gap reconciliation tolerates.
	ReconcileTolerance float64 `yaml:"reconcile_tolerance"`

	// ExcludedCategory is left out of the expense reconciliation expected
	// total.
	ExcludedCategory string `yaml:"excluded_category"`

	// GasProjectNumber receives project tokens starting with "fuel".
	GasProjectNumber string `yaml:"gas_project_number"`

	// GeneralAdminProjectNumber receives the literal project token "ga".
	GeneralAdminProjectNumber string `yaml:"general_admin_project_number"`

	// DateBufferDays widens the persisted-record range query on both ends.
	DateBufferDays int `yaml:"date_buffer_days"`

	// AllocationFloor is the default auto-accept floor for bulk allocation
	// suggestions.
	AllocationFloor float64 `yaml:"allocation_floor"`

	// RevenueTransactionTypes lists the transaction types routed to the
	// revenue stream. Compared case-insensitively.
	RevenueTransactionTypes []string `yaml:"revenue_transaction_types"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${IMPORT_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a fully populated configuration with standard values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath: "buildledger.db",
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Import: ImportConfig{
			AutoAcceptThreshold:       75,
			ReviewThreshold:           40,
			ProjectNumberThreshold:    85,
			ReconcileTolerance:        0.01,
			ExcludedCategory:          "Labor",
			GasProjectNumber:          "99-001",
			GeneralAdminProjectNumber: "99-002",
			DateBufferDays:            1,
			AllocationFloor:           75,
			RevenueTransactionTypes:   []string{"invoice", "sales receipt", "payment", "deposit"},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := Default()
	cfg.Storage.DatabasePath = getEnv("IMPORT_DB_PATH", cfg.Storage.DatabasePath)
	cfg.Server.Port = getEnvInt("IMPORT_PORT", cfg.Server.Port)
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
