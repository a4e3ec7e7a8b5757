package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/guard"
	"github.com/aula-platform/aula/internal/models"
	"github.com/aula-platform/aula/internal/services"
	pkghttp "github.com/aula-platform/aula/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*services.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	guard    *guard.LoginGuard
	timing   *auth.TimingDelay
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, loginGuard *guard.LoginGuard, timing *auth.TimingDelay, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		guard:    loginGuard,
		timing:   timing,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login.
// Shape validation happens in the guard, not via struct tags, because a
// malformed login attempt must count toward the failure total.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login handles user login. Every attempt passes through the login guard
// before any credentials are checked: a locked-out client gets 429 with a
// Retry-After, malformed input gets 400 and counts as a failure.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Unparseable bodies count as failed attempts too
		decision := h.guard.CheckAndAdmit(clientIP, "", "", time.Now())
		if decision.Verdict == guard.Reject {
			pkghttp.WriteLockedOut(w, decision.RetryAfterSeconds)
			return
		}
		pkghttp.WriteValidationError(w, []string{"request body must be valid JSON"})
		return
	}

	decision := h.guard.CheckAndAdmit(clientIP, req.Email, req.Password, time.Now())
	switch decision.Verdict {
	case guard.Reject:
		pkghttp.WriteLockedOut(w, decision.RetryAfterSeconds)
		return
	case guard.Invalid:
		pkghttp.WriteValidationError(w, decision.Errors)
		return
	}

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			h.guard.RecordOutcome(clientIP, guard.Failure, time.Now())
			h.timing.WaitFrom(start, false)
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrAccountDisabled),
			errors.Is(err, models.ErrAccountSuspended):
			h.guard.RecordOutcome(clientIP, guard.Failure, time.Now())
			h.timing.WaitFrom(start, false)
			pkghttp.WriteForbidden(w, "Account is not active")
		case errors.Is(err, models.ErrServiceUnavailable):
			// The credentials were never checked, so no outcome is recorded
			pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	h.guard.RecordOutcome(clientIP, guard.Success, time.Now())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(authResp)
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	authResp, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrServiceUnavailable):
			pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
		default:
			// Password policy and missing-field errors carry their own message
			pkghttp.WriteBadRequest(w, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResp)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if details := ValidateRequest(req); details != nil {
		pkghttp.WriteValidationError(w, details)
		return
	}

	authResp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid or expired refresh token")
		case errors.Is(err, models.ErrServiceUnavailable):
			pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(authResp)
}

// Logout revokes the caller's access token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" {
		pkghttp.WriteUnauthorized(w, "missing authorization header")
		return
	}

	if err := h.service.Logout(r.Context(), tokenString); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
