package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buildledger/import-backend/internal/api/handlers"
	"github.com/buildledger/import-backend/internal/api/middleware"
	"github.com/buildledger/import-backend/internal/application/importer"
	"github.com/buildledger/import-backend/internal/infrastructure/config"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// Server is the HTTP API server.
type Server struct {
	cfg        *config.Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	importer   *importer.Orchestrator
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, repo storage.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		repo:     repo,
		importer: importer.New(repo, cfg, logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		// Imports
		importsHandler := handlers.NewImportsHandler(s.repo, s.importer)
		r.Post("/imports", importsHandler.Upload)
		r.Get("/imports", importsHandler.List)
		r.Get("/imports/{id}", importsHandler.Get)

		// Registries and match preview
		registryHandler := handlers.NewRegistryHandler(s.repo, s.cfg)
		r.Get("/payees", registryHandler.ListPayees)
		r.Get("/payees/resolve", registryHandler.ResolvePayee)
		r.Get("/clients", registryHandler.ListClients)
		r.Get("/projects", registryHandler.ListProjects)

		// Allocation suggestions
		allocationsHandler := handlers.NewAllocationsHandler(s.repo, s.cfg)
		r.Post("/projects/{id}/allocation-suggestions", allocationsHandler.Suggest)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
