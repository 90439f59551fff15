package handler

import (
	"log/slog"
	"net/http"

	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/services"
	"codescrybe/internal/httputil"
)

// RepositoryHandler handles repository HTTP requests
type RepositoryHandler struct {
	repoService services.RepositoryService
	logger      *slog.Logger
}

// NewRepositoryHandler creates a new repository handler
func NewRepositoryHandler(repoService services.RepositoryService, logger *slog.Logger) *RepositoryHandler {
	return &RepositoryHandler{
		repoService: repoService,
		logger:      logger,
	}
}

// Create registers a repository and starts its analysis
// POST /api/repositories
// Returns 201 if created, 409 with the existing repository if the URL is already registered
func (h *RepositoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateRepositoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	repo, err := h.repoService.Create(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(resourceID string) (*models.Repository, error) {
			return h.repoService.Get(r.Context(), resourceID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, repo)
}

// List retrieves all repositories
// GET /api/repositories
func (h *RepositoryHandler) List(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoService.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if repos == nil {
		repos = []models.Repository{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"repositories": repos,
		"total":        len(repos),
	})
}

// Get retrieves a repository by ID
// GET /api/repositories/{id}
func (h *RepositoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, repo)
}

// Delete removes a repository with its chat history and features
// DELETE /api/repositories/{id}
func (h *RepositoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repoService.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Status serves the analysis progress snapshot the frontend polls
// GET /api/repositories/{id}/status
func (h *RepositoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.repoService.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Insights serves aggregate statistics over the analyzed feature graph
// GET /api/repositories/{id}/insights
func (h *RepositoryHandler) Insights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.repoService.Insights(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, insights)
}
