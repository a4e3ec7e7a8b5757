package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/models"
	pkghttp "github.com/aula-platform/aula/pkg/http"
	"github.com/go-chi/chi/v5"
)

// CatalogServiceInterface defines the interface for catalog business logic
type CatalogServiceInterface interface {
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	ListCourses(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error)
	CreateCourse(ctx context.Context, title, description string) (*models.Course, error)
	UpdateCourse(ctx context.Context, id string, title, description string, published *bool) (*models.Course, error)
	DeleteCourse(ctx context.Context, id string) error

	GetSubject(ctx context.Context, id string) (*models.Subject, error)
	ListSubjects(ctx context.Context, courseID string) ([]*models.Subject, error)
	CreateSubject(ctx context.Context, courseID, title string, position int) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id string, title string, position *int) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id string) error

	GetModule(ctx context.Context, id string) (*models.Module, error)
	ListModules(ctx context.Context, subjectID string) ([]*models.Module, error)
	CreateModule(ctx context.Context, subjectID, title, content string, position int) (*models.Module, error)
	UpdateModule(ctx context.Context, id string, title, content string, position *int) (*models.Module, error)
	DeleteModule(ctx context.Context, id string) error
}

// CourseHandler handles course catalog HTTP requests
type CourseHandler struct {
	service CatalogServiceInterface
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(service CatalogServiceInterface) *CourseHandler {
	return &CourseHandler{service: service}
}

// CourseResponse represents a course in the HTTP response
type CourseResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CourseListResponse wraps a page of courses
type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int               `json:"total"`
}

func courseToResponse(course *models.Course) *CourseResponse {
	return &CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Published:   course.Published,
		CreatedAt:   course.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   course.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateCourseRequest represents the request body for course creation
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateCourseRequest represents the request body for course updates
type UpdateCourseRequest struct {
	Title       string `json:"title" validate:"omitempty,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Published   *bool  `json:"published"`
}

// List returns the course catalog. Students only see published courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	publishedOnly := true
	if claims, err := auth.ClaimsFromContext(r.Context()); err == nil {
		if claims.Role == models.RoleAdmin || claims.Role == models.RoleTeacher {
			publishedOnly = false
		}
	}

	courses, err := h.service.ListCourses(r.Context(), publishedOnly, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := CourseListResponse{
		Courses: make([]*CourseResponse, len(courses)),
		Total:   len(courses),
	}
	for i, course := range courses {
		resp.Courses[i] = courseToResponse(course)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single course
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, courseToResponse(course))
}

// Create adds a new course
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	course, err := h.service.CreateCourse(r.Context(), req.Title, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, courseToResponse(course))
}

// Update modifies a course, including publish state
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), id, req.Title, req.Description, req.Published)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, courseToResponse(course))
}

// Delete removes a course
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
