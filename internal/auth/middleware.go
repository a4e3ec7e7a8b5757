package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aula-platform/aula/internal/models"
	pkghttp "github.com/aula-platform/aula/pkg/http"
)

type contextKey string

const (
	// UserContextKey is the context key holding the authenticated user's claims
	UserContextKey contextKey = "user"
)

// RevocationChecker reports whether a token's JTI has been revoked
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Middleware validates bearer tokens on protected routes
type Middleware struct {
	tokenManager *TokenManager
	revocations  RevocationChecker
	logger       *slog.Logger
}

// NewMiddleware creates a new auth Middleware
func NewMiddleware(tm *TokenManager, revocations RevocationChecker, logger *slog.Logger) *Middleware {
	return &Middleware{
		tokenManager: tm,
		revocations:  revocations,
		logger:       logger,
	}
}

// Authenticate verifies the Authorization header and stores claims in the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkghttp.WriteUnauthorized(w, "missing authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			pkghttp.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.tokenManager.ValidateToken(tokenString)
		if err != nil {
			m.logger.Debug("token validation failed", "error", err)
			pkghttp.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		if claims.Type != "access" {
			pkghttp.WriteUnauthorized(w, "invalid token type")
			return
		}

		revoked, err := m.revocations.IsTokenRevoked(r.Context(), claims.ID)
		if err != nil {
			m.logger.Error("revocation check failed", "error", err)
			pkghttp.WriteServiceUnavailable(w, "service temporarily unavailable")
			return
		}
		if revoked {
			pkghttp.WriteUnauthorized(w, "token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole restricts a route to users holding one of the given roles
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ClaimsFromContext(r.Context())
			if err != nil {
				pkghttp.WriteUnauthorized(w, "authentication required")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "insufficient permissions")
		})
	}
}

// ClaimsFromContext extracts the authenticated user's claims from the context
func ClaimsFromContext(ctx context.Context) (*models.TokenClaims, error) {
	claims, ok := ctx.Value(UserContextKey).(*models.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.New("no user claims in context")
	}
	return claims, nil
}
