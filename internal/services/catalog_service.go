package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aula-platform/aula/internal/models"
)

// CourseRepository defines the interface for course persistence
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error)
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
	Update(ctx context.Context, id string, course *models.Course) (*models.Course, error)
	Delete(ctx context.Context, id string) error
}

// SubjectRepository defines the interface for subject persistence
type SubjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) (*models.Subject, error)
	Update(ctx context.Context, id string, subject *models.Subject) (*models.Subject, error)
	Delete(ctx context.Context, id string) error
}

// ModuleRepository defines the interface for module persistence
type ModuleRepository interface {
	GetByID(ctx context.Context, id string) (*models.Module, error)
	ListBySubject(ctx context.Context, subjectID string) ([]*models.Module, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Module, error)
	Create(ctx context.Context, module *models.Module) (*models.Module, error)
	Update(ctx context.Context, id string, module *models.Module) (*models.Module, error)
	Delete(ctx context.Context, id string) error
}

// CatalogService handles course, subject and module management
type CatalogService struct {
	courses  CourseRepository
	subjects SubjectRepository
	modules  ModuleRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(courses CourseRepository, subjects SubjectRepository, modules ModuleRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		courses:  courses,
		subjects: subjects,
		modules:  modules,
		logger:   logger,
	}
}

// Courses

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *CatalogService) ListCourses(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.courses.List(ctx, publishedOnly, limit, offset)
}

func (s *CatalogService) CreateCourse(ctx context.Context, title, description string) (*models.Course, error) {
	if title = strings.TrimSpace(title); title == "" {
		return nil, models.ErrBadRequest
	}

	course := &models.Course{
		Title:       title,
		Description: description,
	}

	created, err := s.courses.Create(ctx, course)
	if err != nil {
		s.logger.Error("failed to create course", slog.Any("error", err))
		return nil, err
	}

	s.logger.Info("course created", slog.String("course_id", created.ID))
	return created, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id string, title, description string, published *bool) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		course.Title = title
	}
	if description != "" {
		course.Description = description
	}
	if published != nil {
		course.Published = *published
	}

	return s.courses.Update(ctx, id, course)
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	return s.courses.Delete(ctx, id)
}

// Subjects

func (s *CatalogService) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	return s.subjects.GetByID(ctx, id)
}

func (s *CatalogService) ListSubjects(ctx context.Context, courseID string) ([]*models.Subject, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	return s.subjects.ListByCourse(ctx, courseID)
}

func (s *CatalogService) CreateSubject(ctx context.Context, courseID, title string, position int) (*models.Subject, error) {
	if title = strings.TrimSpace(title); title == "" {
		return nil, models.ErrBadRequest
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		CourseID: courseID,
		Title:    title,
		Position: position,
	}

	return s.subjects.Create(ctx, subject)
}

func (s *CatalogService) UpdateSubject(ctx context.Context, id string, title string, position *int) (*models.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		subject.Title = title
	}
	if position != nil {
		subject.Position = *position
	}

	return s.subjects.Update(ctx, id, subject)
}

func (s *CatalogService) DeleteSubject(ctx context.Context, id string) error {
	return s.subjects.Delete(ctx, id)
}

// Modules

func (s *CatalogService) GetModule(ctx context.Context, id string) (*models.Module, error) {
	return s.modules.GetByID(ctx, id)
}

func (s *CatalogService) ListModules(ctx context.Context, subjectID string) ([]*models.Module, error) {
	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	return s.modules.ListBySubject(ctx, subjectID)
}

func (s *CatalogService) CreateModule(ctx context.Context, subjectID, title, content string, position int) (*models.Module, error) {
	if title = strings.TrimSpace(title); title == "" {
		return nil, models.ErrBadRequest
	}

	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	module := &models.Module{
		SubjectID: subjectID,
		Title:     title,
		Content:   content,
		Position:  position,
	}

	return s.modules.Create(ctx, module)
}

func (s *CatalogService) UpdateModule(ctx context.Context, id string, title, content string, position *int) (*models.Module, error) {
	module, err := s.modules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		module.Title = title
	}
	if content != "" {
		module.Content = content
	}
	if position != nil {
		module.Position = *position
	}

	return s.modules.Update(ctx, id, module)
}

func (s *CatalogService) DeleteModule(ctx context.Context, id string) error {
	return s.modules.Delete(ctx, id)
}
