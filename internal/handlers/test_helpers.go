package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/models"
	"github.com/aula-platform/aula/internal/services"
	pkghttp "github.com/aula-platform/aula/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithClaims adds user claims to the request context for authenticated endpoints
func WithClaims(req *http.Request, userID, role string) *http.Request {
	claims := &models.TokenClaims{
		UserID: userID,
		Role:   role,
		Type:   "access",
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	RegisterFunc     func(ctx context.Context, email, password, name string) (*services.AuthResponse, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	LogoutFunc       func(ctx context.Context, accessToken string) error
	LoginCalls       int
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	m.LoginCalls++
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, accessToken)
	}
	return nil
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc         func(ctx context.Context, email, password, name, role string) (*models.User, error)
	UpdateFunc         func(ctx context.Context, id string, name, role string) (*models.User, error)
	SetStatusFunc      func(ctx context.Context, id, status, actorID string) (*models.User, error)
	ChangePasswordFunc func(ctx context.Context, id, currentPassword, newPassword string) error
	DeleteFunc         func(ctx context.Context, id, actorID string) error
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserService) Create(ctx context.Context, email, password, name, role string) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, password, name, role)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) Update(ctx context.Context, id string, name, role string) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, name, role)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) SetStatus(ctx context.Context, id, status, actorID string) (*models.User, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status, actorID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, id, currentPassword, newPassword)
	}
	return nil
}

func (m *MockUserService) Delete(ctx context.Context, id, actorID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, actorID)
	}
	return nil
}

// MockEnrollmentService implements EnrollmentServiceInterface for testing
type MockEnrollmentService struct {
	GetByIDFunc           func(ctx context.Context, id string) (*models.Enrollment, error)
	ListByUserFunc        func(ctx context.Context, userID string) ([]*models.Enrollment, error)
	EnrollFunc            func(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error)
	SetEnabledModulesFunc func(ctx context.Context, enrollmentID string, moduleIDs []string) (*models.Enrollment, error)
	UnenrollFunc          func(ctx context.Context, enrollmentID string) error
}

func (m *MockEnrollmentService) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockEnrollmentService) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Enrollment{}, nil
}

func (m *MockEnrollmentService) Enroll(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error) {
	if m.EnrollFunc != nil {
		return m.EnrollFunc(ctx, userID, courseID, enabledModuleIDs)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEnrollmentService) SetEnabledModules(ctx context.Context, enrollmentID string, moduleIDs []string) (*models.Enrollment, error) {
	if m.SetEnabledModulesFunc != nil {
		return m.SetEnabledModulesFunc(ctx, enrollmentID, moduleIDs)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEnrollmentService) Unenroll(ctx context.Context, enrollmentID string) error {
	if m.UnenrollFunc != nil {
		return m.UnenrollFunc(ctx, enrollmentID)
	}
	return nil
}
