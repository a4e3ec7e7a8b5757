package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aula-platform/aula/internal/models"
	pkghttp "github.com/aula-platform/aula/pkg/http"
	"github.com/go-chi/chi/v5"
)

// SubjectHandler handles subject HTTP requests
type SubjectHandler struct {
	service CatalogServiceInterface
}

// NewSubjectHandler creates a new SubjectHandler
func NewSubjectHandler(service CatalogServiceInterface) *SubjectHandler {
	return &SubjectHandler{service: service}
}

// SubjectResponse represents a subject in the HTTP response
type SubjectResponse struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SubjectListResponse wraps the subjects of a course
type SubjectListResponse struct {
	Subjects []*SubjectResponse `json:"subjects"`
	Total    int                `json:"total"`
}

func subjectToResponse(subject *models.Subject) *SubjectResponse {
	return &SubjectResponse{
		ID:        subject.ID,
		CourseID:  subject.CourseID,
		Title:     subject.Title,
		Position:  subject.Position,
		CreatedAt: subject.CreatedAt.Format(time.RFC3339),
		UpdatedAt: subject.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateSubjectRequest represents the request body for subject creation
type CreateSubjectRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Position int    `json:"position" validate:"gte=0"`
}

// UpdateSubjectRequest represents the request body for subject updates
type UpdateSubjectRequest struct {
	Title    string `json:"title" validate:"omitempty,min=1,max=200"`
	Position *int   `json:"position" validate:"omitempty,gte=0"`
}

// ListByCourse returns the subjects of a course in position order
func (h *SubjectHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	subjects, err := h.service.ListSubjects(r.Context(), courseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := SubjectListResponse{
		Subjects: make([]*SubjectResponse, len(subjects)),
		Total:    len(subjects),
	}
	for i, subject := range subjects {
		resp.Subjects[i] = subjectToResponse(subject)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single subject
func (h *SubjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subject, err := h.service.GetSubject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjectToResponse(subject))
}

// Create adds a subject to a course
func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var req CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	subject, err := h.service.CreateSubject(r.Context(), courseID, req.Title, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, subjectToResponse(subject))
}

// Update modifies a subject
func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	subject, err := h.service.UpdateSubject(r.Context(), id, req.Title, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjectToResponse(subject))
}

// Delete removes a subject
func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteSubject(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
