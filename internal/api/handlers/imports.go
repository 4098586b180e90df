package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buildledger/import-backend/internal/adapters/bankcsv"
	"github.com/buildledger/import-backend/internal/api/dto"
	"github.com/buildledger/import-backend/internal/application/importer"
	"github.com/buildledger/import-backend/internal/infrastructure/storage"
)

// maxUploadBytes caps the multipart upload size.
const maxUploadBytes = 32 << 20

// ImportsHandler handles CSV upload and import-run history requests.
type ImportsHandler struct {
	*Base
	importer *importer.Orchestrator
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(repo storage.Repository, orch *importer.Orchestrator) *ImportsHandler {
	return &ImportsHandler{
		Base:     NewBase(repo),
		importer: orch,
	}
}

// Upload handles POST /api/imports - multipart CSV upload. The "file" form
// field carries the export; dry_run, suggest_allocations and
// auto_create_payees are query flags.
func (h *ImportsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("expected multipart form upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("missing file field"))
		return
	}
	defer func() { _ = file.Close() }()

	rows, rowErrs, err := bankcsv.Parse(file)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	opts := importer.Options{
		DryRun:             ParseBoolParam(r, "dry_run", false),
		SuggestAllocations: ParseBoolParam(r, "suggest_allocations", false),
		AutoCreatePayees:   ParseBoolParam(r, "auto_create_payees", false),
		SourceLabel:        header.Filename,
	}

	result, err := h.importer.Run(r.Context(), rows, rowErrs, opts)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// List handles GET /api/imports - returns recent import runs.
func (h *ImportsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListImportRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ImportRunListResponse{
		Runs:  make([]dto.ImportRunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, dto.ToImportRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/imports/{id} - returns a single import run.
func (h *ImportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetImportRun(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, dto.NotFoundError("import run"))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, run)
}
