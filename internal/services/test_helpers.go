package services

import (
	"context"
	"time"

	"github.com/aula-platform/aula/internal/models"
	pkgauth "github.com/aula-platform/aula/pkg/auth"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc         func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
	DeleteFunc         func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTokenRevocationRepository implements TokenRevocationRepository for testing
type MockTokenRevocationRepository struct {
	RevokeTokenFunc    func(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error
	IsTokenRevokedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockTokenRevocationRepository) RevokeToken(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error {
	if m.RevokeTokenFunc != nil {
		return m.RevokeTokenFunc(ctx, jti, userID, tokenType, expiresAt, reason)
	}
	return nil
}

func (m *MockTokenRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsTokenRevokedFunc != nil {
		return m.IsTokenRevokedFunc(ctx, jti)
	}
	return false, nil
}

// MockCourseRepository implements CourseRepository for testing
type MockCourseRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Course, error)
	ListFunc    func(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error)
	CreateFunc  func(ctx context.Context, course *models.Course) (*models.Course, error)
	UpdateFunc  func(ctx context.Context, id string, course *models.Course) (*models.Course, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCourseRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, publishedOnly, limit, offset)
	}
	return []*models.Course{}, nil
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, course)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCourseRepository) Update(ctx context.Context, id string, course *models.Course) (*models.Course, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, course)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCourseRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSubjectRepository implements SubjectRepository for testing
type MockSubjectRepository struct {
	GetByIDFunc      func(ctx context.Context, id string) (*models.Subject, error)
	ListByCourseFunc func(ctx context.Context, courseID string) ([]*models.Subject, error)
	CreateFunc       func(ctx context.Context, subject *models.Subject) (*models.Subject, error)
	UpdateFunc       func(ctx context.Context, id string, subject *models.Subject) (*models.Subject, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *MockSubjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubjectRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Subject, error) {
	if m.ListByCourseFunc != nil {
		return m.ListByCourseFunc(ctx, courseID)
	}
	return []*models.Subject{}, nil
}

func (m *MockSubjectRepository) Create(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, subject)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSubjectRepository) Update(ctx context.Context, id string, subject *models.Subject) (*models.Subject, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, subject)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSubjectRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockModuleRepository implements ModuleRepository for testing
type MockModuleRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.Module, error)
	ListBySubjectFunc func(ctx context.Context, subjectID string) ([]*models.Module, error)
	ListByCourseFunc  func(ctx context.Context, courseID string) ([]*models.Module, error)
	CreateFunc        func(ctx context.Context, module *models.Module) (*models.Module, error)
	UpdateFunc        func(ctx context.Context, id string, module *models.Module) (*models.Module, error)
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *MockModuleRepository) GetByID(ctx context.Context, id string) (*models.Module, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockModuleRepository) ListBySubject(ctx context.Context, subjectID string) ([]*models.Module, error) {
	if m.ListBySubjectFunc != nil {
		return m.ListBySubjectFunc(ctx, subjectID)
	}
	return []*models.Module{}, nil
}

func (m *MockModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Module, error) {
	if m.ListByCourseFunc != nil {
		return m.ListByCourseFunc(ctx, courseID)
	}
	return []*models.Module{}, nil
}

func (m *MockModuleRepository) Create(ctx context.Context, module *models.Module) (*models.Module, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, module)
	}
	return nil, models.ErrInternalServer
}

func (m *MockModuleRepository) Update(ctx context.Context, id string, module *models.Module) (*models.Module, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, module)
	}
	return nil, models.ErrInternalServer
}

func (m *MockModuleRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEnrollmentRepository implements EnrollmentRepository for testing
type MockEnrollmentRepository struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.Enrollment, error)
	GetByUserAndCourseFunc func(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListByUserFunc         func(ctx context.Context, userID string) ([]*models.Enrollment, error)
	CreateFunc             func(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error)
	SetEnabledModulesFunc  func(ctx context.Context, enrollmentID string, moduleIDs []string) error
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *MockEnrollmentRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	if m.GetByUserAndCourseFunc != nil {
		return m.GetByUserAndCourseFunc(ctx, userID, courseID)
	}
	return nil, models.ErrNotFound
}

func (m *MockEnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Enrollment{}, nil
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, courseID, enabledModuleIDs)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEnrollmentRepository) SetEnabledModules(ctx context.Context, enrollmentID string, moduleIDs []string) error {
	if m.SetEnabledModulesFunc != nil {
		return m.SetEnabledModulesFunc(ctx, enrollmentID, moduleIDs)
	}
	return nil
}

func (m *MockEnrollmentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendEnrollmentConfirmationFunc func(ctx context.Context, email, userName, courseTitle string) error
	SentCount                      int
}

func (m *MockEmailService) SendEnrollmentConfirmation(ctx context.Context, email, userName, courseTitle string) error {
	m.SentCount++
	if m.SendEnrollmentConfirmationFunc != nil {
		return m.SendEnrollmentConfirmationFunc(ctx, email, userName, courseTitle)
	}
	return nil
}

// NewTestUser builds an active user with a real bcrypt hash of the given password
func NewTestUser(id, email, password string) *models.User {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}

	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
