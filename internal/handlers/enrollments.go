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

// EnrollmentServiceInterface defines the interface for enrollment business logic
type EnrollmentServiceInterface interface {
	GetByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	Enroll(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error)
	SetEnabledModules(ctx context.Context, enrollmentID string, moduleIDs []string) (*models.Enrollment, error)
	Unenroll(ctx context.Context, enrollmentID string) error
}

// EnrollmentHandler handles enrollment HTTP requests
type EnrollmentHandler struct {
	service EnrollmentServiceInterface
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(service EnrollmentServiceInterface) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// EnrollmentResponse represents an enrollment in the HTTP response
type EnrollmentResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	CourseID         string   `json:"course_id"`
	EnrolledAt       string   `json:"enrolled_at"`
	EnabledModuleIDs []string `json:"enabled_module_ids"`
}

// EnrollmentListResponse wraps a user's enrollments
type EnrollmentListResponse struct {
	Enrollments []*EnrollmentResponse `json:"enrollments"`
	Total       int                   `json:"total"`
}

func enrollmentToResponse(enrollment *models.Enrollment) *EnrollmentResponse {
	ids := enrollment.EnabledModuleIDs
	if ids == nil {
		ids = []string{}
	}
	return &EnrollmentResponse{
		ID:               enrollment.ID,
		UserID:           enrollment.UserID,
		CourseID:         enrollment.CourseID,
		EnrolledAt:       enrollment.EnrolledAt.Format(time.RFC3339),
		EnabledModuleIDs: ids,
	}
}

// EnrollRequest represents the request body for enrolling a user
type EnrollRequest struct {
	UserID           string   `json:"user_id" validate:"required"`
	CourseID         string   `json:"course_id" validate:"required"`
	EnabledModuleIDs []string `json:"enabled_module_ids"`
}

// SetEnabledModulesRequest represents the request body for module toggling
type SetEnabledModulesRequest struct {
	EnabledModuleIDs []string `json:"enabled_module_ids" validate:"required"`
}

// ListMine returns the authenticated user's enrollments
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	enrollments, err := h.service.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := EnrollmentListResponse{
		Enrollments: make([]*EnrollmentResponse, len(enrollments)),
		Total:       len(enrollments),
	}
	for i, enrollment := range enrollments {
		resp.Enrollments[i] = enrollmentToResponse(enrollment)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListByUser returns a given user's enrollments
func (h *EnrollmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	enrollments, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := EnrollmentListResponse{
		Enrollments: make([]*EnrollmentResponse, len(enrollments)),
		Total:       len(enrollments),
	}
	for i, enrollment := range enrollments {
		resp.Enrollments[i] = enrollmentToResponse(enrollment)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create enrolls a user in a course
func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), req.UserID, req.CourseID, req.EnabledModuleIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrollmentToResponse(enrollment))
}

// SetEnabledModules replaces the enabled-module set of an enrollment
func (h *EnrollmentHandler) SetEnabledModules(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetEnabledModulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	enrollment, err := h.service.SetEnabledModules(r.Context(), id, req.EnabledModuleIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, enrollmentToResponse(enrollment))
}

// Delete removes an enrollment
func (h *EnrollmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Unenroll(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
