package importer

import (
	"log/slog"

	"github.com/buildledger/import-backend/internal/domain/classifier"
	"github.com/buildledger/import-backend/internal/infrastructure/config"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// Options holds per-run import settings.
type Options struct {
	// DryRun runs the full pipeline but skips the batch writes.
	DryRun bool

	// SuggestAllocations computes allocation suggestions for expenses that
	// resolved to a project.
	SuggestAllocations bool

	// AutoCreatePayees creates a payee for expense rows whose name matched
	// nothing; later rows in the batch can match the new payee.
	AutoCreatePayees bool

	// SourceLabel names the upload in the run history, usually the filename.
	SourceLabel string
}

// Orchestrator runs the import pipeline.
type Orchestrator struct {
	repo   storage.Repository
	cfg    *config.Config
	tables classifier.Tables
	logger *slog.Logger
}

// New creates an import orchestrator.
func New(repo storage.Repository, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		repo:   repo,
		cfg:    cfg,
		tables: classifier.DefaultTables(),
		logger: logger,
	}
}
