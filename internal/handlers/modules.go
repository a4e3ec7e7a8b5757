package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/models"
	pkghttp "github.com/aula-platform/aula/pkg/http"
	"github.com/go-chi/chi/v5"
)

// ModuleAccessChecker reports whether a user may read a module's content
type ModuleAccessChecker interface {
	CanAccessModule(ctx context.Context, userID, moduleID string) (bool, error)
}

// ModuleHandler handles module HTTP requests
type ModuleHandler struct {
	service CatalogServiceInterface
	access  ModuleAccessChecker
}

// NewModuleHandler creates a new ModuleHandler
func NewModuleHandler(service CatalogServiceInterface, access ModuleAccessChecker) *ModuleHandler {
	return &ModuleHandler{service: service, access: access}
}

// ModuleResponse represents a module in the HTTP response
type ModuleResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ModuleListResponse wraps the modules of a subject
type ModuleListResponse struct {
	Modules []*ModuleResponse `json:"modules"`
	Total   int               `json:"total"`
}

func moduleToResponse(module *models.Module, includeContent bool) *ModuleResponse {
	resp := &ModuleResponse{
		ID:        module.ID,
		SubjectID: module.SubjectID,
		Title:     module.Title,
		Position:  module.Position,
		CreatedAt: module.CreatedAt.Format(time.RFC3339),
		UpdatedAt: module.UpdatedAt.Format(time.RFC3339),
	}
	if includeContent {
		resp.Content = module.Content
	}
	return resp
}

// CreateModuleRequest represents the request body for module creation
type CreateModuleRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Content  string `json:"content"`
	Position int    `json:"position" validate:"gte=0"`
}

// UpdateModuleRequest represents the request body for module updates
type UpdateModuleRequest struct {
	Title    string `json:"title" validate:"omitempty,min=1,max=200"`
	Content  string `json:"content"`
	Position *int   `json:"position" validate:"omitempty,gte=0"`
}

// ListBySubject returns the modules of a subject, titles only
func (h *ModuleHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	modules, err := h.service.ListModules(r.Context(), subjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := ModuleListResponse{
		Modules: make([]*ModuleResponse, len(modules)),
		Total:   len(modules),
	}
	for i, module := range modules {
		resp.Modules[i] = moduleToResponse(module, false)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a module with content. Students must hold an enrollment that
// enables the module; teachers and admins always see content.
func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	module, err := h.service.GetModule(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	includeContent := claims.Role == models.RoleAdmin || claims.Role == models.RoleTeacher
	if !includeContent {
		ok, err := h.access.CanAccessModule(r.Context(), claims.UserID, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !ok {
			pkghttp.WriteForbidden(w, "Module is not enabled for your enrollment")
			return
		}
		includeContent = true
	}

	writeJSON(w, http.StatusOK, moduleToResponse(module, includeContent))
}

// Create adds a module to a subject
func (h *ModuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	var req CreateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	module, err := h.service.CreateModule(r.Context(), subjectID, req.Title, req.Content, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, moduleToResponse(module, true))
}

// Update modifies a module
func (h *ModuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	module, err := h.service.UpdateModule(r.Context(), id, req.Title, req.Content, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, moduleToResponse(module, true))
}

// Delete removes a module
func (h *ModuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteModule(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
