package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aula-platform/aula/internal/models"
)

// EnrollmentRepository defines the interface for enrollment persistence
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	Create(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error)
	SetEnabledModules(ctx context.Context, enrollmentID string, moduleIDs []string) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentService handles enrollment business logic
type EnrollmentService struct {
	enrollments EnrollmentRepository
	users       UserRepository
	courses     CourseRepository
	modules     ModuleRepository
	email       EmailService
	logger      *slog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(enrollments EnrollmentRepository, users UserRepository, courses CourseRepository, modules ModuleRepository, email EmailService, logger *slog.Logger) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		users:       users,
		courses:     courses,
		modules:     modules,
		email:       email,
		logger:      logger,
	}
}

func (s *EnrollmentService) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.enrollments.GetByID(ctx, id)
}

func (s *EnrollmentService) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	return s.enrollments.ListByUser(ctx, userID)
}

// courseModuleSet returns the IDs of all modules belonging to a course
func (s *EnrollmentService) courseModuleSet(ctx context.Context, courseID string) (map[string]bool, error) {
	modules, err := s.modules.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(modules))
	for _, m := range modules {
		set[m.ID] = true
	}
	return set, nil
}

// Enroll enrolls a user in a published course. When enabledModuleIDs is
// empty, every module of the course is enabled.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !course.Published {
		return nil, models.ErrNotFound
	}

	if _, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	courseModules, err := s.courseModuleSet(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if len(enabledModuleIDs) == 0 {
		for id := range courseModules {
			enabledModuleIDs = append(enabledModuleIDs, id)
		}
	} else {
		for _, id := range enabledModuleIDs {
			if !courseModules[id] {
				return nil, models.ErrBadRequest
			}
		}
	}

	enrollment, err := s.enrollments.Create(ctx, userID, courseID, enabledModuleIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user enrolled",
		slog.String("user_id", userID),
		slog.String("course_id", courseID))

	// Confirmation email is best-effort, the enrollment already committed
	if err := s.email.SendEnrollmentConfirmation(ctx, user.Email, user.Name, course.Title); err != nil {
		s.logger.Error("failed to send enrollment confirmation",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}

	return enrollment, nil
}

// SetEnabledModules replaces the per-enrollment module enablement set.
// Every ID must be a module of the enrolled course.
func (s *EnrollmentService) SetEnabledModules(ctx context.Context, enrollmentID string, moduleIDs []string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	courseModules, err := s.courseModuleSet(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	for _, id := range moduleIDs {
		if !courseModules[id] {
			return nil, models.ErrBadRequest
		}
	}

	if err := s.enrollments.SetEnabledModules(ctx, enrollmentID, moduleIDs); err != nil {
		return nil, err
	}

	enrollment.EnabledModuleIDs = moduleIDs
	return enrollment, nil
}

// Unenroll removes an enrollment
func (s *EnrollmentService) Unenroll(ctx context.Context, enrollmentID string) error {
	return s.enrollments.Delete(ctx, enrollmentID)
}

// CanAccessModule reports whether a user's enrollment enables a module
func (s *EnrollmentService) CanAccessModule(ctx context.Context, userID, moduleID string) (bool, error) {
	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return false, err
	}

	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, enrollment := range enrollments {
		for _, id := range enrollment.EnabledModuleIDs {
			if id == module.ID {
				return true, nil
			}
		}
	}

	return false, nil
}
