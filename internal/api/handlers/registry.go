package handlers

import (
	"net/http"

	"github.com/buildledger/import-backend/internal/api/dto"
	"github.com/buildledger/import-backend/internal/domain/resolver"
	"github.com/buildledger/import-backend/internal/infrastructure/config"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// RegistryHandler serves the canonical registries and the payee match
// preview.
type RegistryHandler struct {
	*Base
	cfg *config.Config
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(repo storage.Repository, cfg *config.Config) *RegistryHandler {
	return &RegistryHandler{
		Base: NewBase(repo),
		cfg:  cfg,
	}
}

// ListPayees handles GET /api/payees.
func (h *RegistryHandler) ListPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := h.repo.ListPayees()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.PayeeListResponse{Payees: payees, Count: len(payees)})
}

// ListClients handles GET /api/clients.
func (h *RegistryHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.repo.ListClients()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.ClientListResponse{Clients: clients, Count: len(clients)})
}

// ListProjects handles GET /api/projects.
func (h *RegistryHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.ListProjects()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.ProjectListResponse{Projects: projects, Count: len(projects)})
}

// ResolvePayee handles GET /api/payees/resolve?name= - the manual-review
// match preview. Returns all candidates in the review band and the accepted
// candidate when one cleared the auto-accept threshold.
func (h *RegistryHandler) ResolvePayee(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("name query parameter is required"))
		return
	}

	payees, err := h.repo.ListPayees()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	cfg := resolver.DefaultConfig()
	cfg.AutoAcceptThreshold = h.cfg.Import.AutoAcceptThreshold
	cfg.ReviewThreshold = h.cfg.Import.ReviewThreshold

	res := resolver.New(cfg, payees, nil, nil, nil)
	match := res.ResolvePayee(name)

	h.WriteJSON(w, http.StatusOK, dto.ResolveResponse{
		Input:      name,
		Accepted:   match.Accepted,
		Candidates: match.Candidates,
	})
}
