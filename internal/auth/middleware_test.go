package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aula-platform/aula/internal/models"
)

type stubRevocations struct {
	revoked bool
	err     error
}

func (s *stubRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked, s.err
}

func newTestMiddleware(revocations RevocationChecker) (*Middleware, *TokenManager) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMiddleware(tm, revocations, logger), tm
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	mw, tm := newTestMiddleware(&stubRevocations{})

	token, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	var gotClaims *models.TokenClaims
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID != "user-123" {
		t.Errorf("expected claims for user-123 in context, got %+v", gotClaims)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	mw, _ := newTestMiddleware(&stubRevocations{})

	called := false
	handler := mw.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("handler should not be reached without a token")
	}
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	mw, tm := newTestMiddleware(&stubRevocations{})

	token, err := tm.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	called := false
	handler := mw.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for refresh token on protected route, got %d", rec.Code)
	}
	if called {
		t.Error("handler should not be reached with a refresh token")
	}
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	mw, tm := newTestMiddleware(&stubRevocations{revoked: true})

	token, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	called := false
	handler := mw.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", rec.Code)
	}
	if called {
		t.Error("handler should not be reached with a revoked token")
	}
}

func TestRequireRole(t *testing.T) {
	mw, _ := newTestMiddleware(&stubRevocations{})

	tests := []struct {
		name       string
		role       string
		allowed    []string
		wantStatus int
	}{
		{"admin allowed", models.RoleAdmin, []string{models.RoleAdmin}, http.StatusOK},
		{"teacher allowed among several", models.RoleTeacher, []string{models.RoleAdmin, models.RoleTeacher}, http.StatusOK},
		{"student forbidden", models.RoleStudent, []string{models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := mw.RequireRole(tt.allowed...)(okHandler(&called))

			claims := &models.TokenClaims{UserID: "user-123", Role: tt.role}
			ctx := context.WithValue(context.Background(), UserContextKey, claims)
			req := httptest.NewRequest(http.MethodGet, "/admin", nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequireRole_NoClaims(t *testing.T) {
	mw, _ := newTestMiddleware(&stubRevocations{})

	called := false
	handler := mw.RequireRole(models.RoleAdmin)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without claims, got %d", rec.Code)
	}
}
