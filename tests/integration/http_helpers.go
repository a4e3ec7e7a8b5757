package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/config"
	"github.com/aula-platform/aula/internal/database"
	"github.com/aula-platform/aula/internal/guard"
	"github.com/aula-platform/aula/internal/handlers"
	middlewareCustom "github.com/aula-platform/aula/internal/middleware"
	"github.com/aula-platform/aula/internal/routes"
	"github.com/aula-platform/aula/internal/services"
	pkghttp "github.com/aula-platform/aula/pkg/http"
	pkglogger "github.com/aula-platform/aula/pkg/logger"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To          string
	UserName    string
	CourseTitle string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendEnrollmentConfirmation records the email
func (m *MockEmailService) SendEnrollmentConfirmation(ctx context.Context, email, userName, courseTitle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{
		To:          email,
		UserName:    userName,
		CourseTitle: courseTitle,
	})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Config       *config.Config

	// Dependency references for inspection in tests
	LoginGuard *guard.LoginGuard
	logger     *slog.Logger
}

// NewTestServer initializes a complete HTTP server with real database + mocked email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret-32-characters-long-for-testing",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
			GuardSweepInterval: 1 * time.Hour,
			LoginRatePerMinute: 1000,
		},
		Email: config.EmailConfig{
			Enabled:     false,
			FromAddress: "noreply@test.local",
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
			TrustedProxies: []string{},
		},
	}

	userRepo, revokeRepo, courseRepo, subjectRepo, moduleRepo, enrollmentRepo :=
		InitializeRepositories(db)

	mockEmail := &MockEmailService{
		SentEmails: []SentEmail{},
	}

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	loginGuard := guard.NewLoginGuard(logger)

	// Zero delays keep the suite fast
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})

	authService := services.NewAuthService(userRepo, tokenManager, revokeRepo, logger, auditLogger)
	userService := services.NewUserService(userRepo, logger, auditLogger)
	catalogService := services.NewCatalogService(courseRepo, subjectRepo, moduleRepo, logger)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, userRepo, courseRepo, moduleRepo, mockEmail, logger)

	ipConfig := &pkghttp.IPConfig{
		TrustedProxies: cfg.Server.TrustedProxies,
	}

	h := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, loginGuard, timingDelay, ipConfig),
		Users:       handlers.NewUserHandler(userService),
		Courses:     handlers.NewCourseHandler(catalogService),
		Subjects:    handlers.NewSubjectHandler(catalogService),
		Modules:     handlers.NewModuleHandler(catalogService, enrollmentService),
		Enrollments: handlers.NewEnrollmentHandler(enrollmentService),
		Admin:       handlers.NewAdminHandler(loginGuard),
	}

	authMW := auth.NewMiddleware(tokenManager, revokeRepo, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, h, authMW, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Auth.LoginRatePerMinute,
	})

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: mockEmail,
		Config:       cfg,
		LoginGuard:   loginGuard,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with access token
func (ts *TestServer) RequestWithAuth(method, path, accessToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractTokensFromResponse extracts access/refresh tokens from auth response
func ExtractTokensFromResponse(resp *http.Response) (accessToken, refreshToken string, err error) {
	defer resp.Body.Close()

	var authResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", "", fmt.Errorf("failed to parse response: %w", err)
	}

	if access, ok := authResp["access_token"].(string); ok {
		accessToken = access
	}
	if refresh, ok := authResp["refresh_token"].(string); ok {
		refreshToken = refresh
	}

	return
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", fmt.Errorf("failed to parse error response: %w", err)
	}

	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	if errStr, ok := errResp["error"].(string); ok {
		return errStr, nil
	}

	return "", fmt.Errorf("no error message in response")
}
