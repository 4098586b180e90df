package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/buildledger/import-backend/internal/api/dto"
	"github.com/buildledger/import-backend/internal/domain/allocator"
	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/infrastructure/config"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// AllocationsHandler serves bulk allocation suggestions.
type AllocationsHandler struct {
	*Base
	cfg *config.Config
}

// NewAllocationsHandler creates a new allocations handler.
func NewAllocationsHandler(repo storage.Repository, cfg *config.Config) *AllocationsHandler {
	return &AllocationsHandler{
		Base: NewBase(repo),
		cfg:  cfg,
	}
}

// Suggest handles POST /api/projects/{id}/allocation-suggestions. The body
// carries the expenses to match; candidates come from the project's current
// estimate, accepted quotes, and approved change orders.
func (h *AllocationsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("project ID is required"))
		return
	}

	var req dto.AllocationSuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if len(req.Expenses) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("expenses list is empty"))
		return
	}

	expenses := make([]allocator.Expense, 0, len(req.Expenses))
	for _, in := range req.Expenses {
		amount, err := decimal.NewFromString(in.Amount)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError("invalid amount: "+in.Amount))
			return
		}
		expenses = append(expenses, allocator.Expense{
			Line:      in.Line,
			ID:        in.ID,
			Category:  model.Category(in.Category),
			Amount:    amount,
			PayeeName: in.PayeeName,
		})
	}

	candidates, err := h.repo.ListAllocationCandidates(projectID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	cfg := allocator.Config{AutoAcceptFloor: h.cfg.Import.AllocationFloor}
	if req.AutoAcceptFloor != nil {
		cfg.AutoAcceptFloor = *req.AutoAcceptFloor
	}

	suggestions := allocator.SuggestAll(expenses, candidates, cfg)
	if suggestions == nil {
		suggestions = []model.AllocationSuggestion{}
	}

	h.WriteJSON(w, http.StatusOK, dto.AllocationSuggestionsResponse{
		ProjectID:   projectID,
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}
