package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/models"
	pkglogger "github.com/aula-platform/aula/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(userRepo UserRepository, revokeRepo TokenRevocationRepository) *AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-for-hmac", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(userRepo, tm, revokeRepo, logger, pkglogger.NewAuditLogger(logger))
}

func TestAuthService_Login_Success(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "student@example.com", email)
			return user, nil
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Login(context.Background(), "Student@Example.com", "SecurePassword123")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user123", resp.User.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Login(context.Background(), "student@example.com", "WrongPassword123")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Login(context.Background(), "nobody@example.com", "SecurePassword123")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestAuthService_Login_DatabaseDown(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Login(context.Background(), "student@example.com", "SecurePassword123")

	assert.ErrorIs(t, err, models.ErrServiceUnavailable)
	assert.Nil(t, resp)
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")
	user.Status = models.StatusDisabled

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Login(context.Background(), "student@example.com", "SecurePassword123")

	assert.ErrorIs(t, err, models.ErrAccountDisabled)
	assert.Nil(t, resp)
}

func TestAuthService_Login_SuspendedAccount(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")
	user.Status = models.StatusSuspended

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Login(context.Background(), "student@example.com", "SecurePassword123")

	assert.ErrorIs(t, err, models.ErrAccountSuspended)
	assert.Nil(t, resp)
}

func TestAuthService_Register_Success(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user123"
			user.Status = models.StatusActive
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return user, nil
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Register(context.Background(), "new@example.com", "SecurePassword123", "New User")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	existing := NewTestUser("user123", "taken@example.com", "SecurePassword123")

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
	}

	svc := newAuthService(mockUserRepo, &MockTokenRevocationRepository{})

	resp, err := svc.Register(context.Background(), "taken@example.com", "SecurePassword123", "New User")

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Nil(t, resp)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := newAuthService(&MockUserRepository{}, &MockTokenRevocationRepository{})

	resp, err := svc.Register(context.Background(), "new@example.com", "weak", "New User")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			assert.Equal(t, "user123", id)
			return user, nil
		},
	}

	revoked := false
	mockRevokeRepo := &MockTokenRevocationRepository{
		RevokeTokenFunc: func(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error {
			revoked = true
			assert.Equal(t, "refresh", tokenType)
			assert.Equal(t, "rotated", reason)
			return nil
		},
	}

	svc := newAuthService(mockUserRepo, mockRevokeRepo)

	refreshToken, err := svc.tm.GenerateRefreshToken(user)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), refreshToken)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, revoked, "old refresh token should be revoked after rotation")
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")

	svc := newAuthService(&MockUserRepository{}, &MockTokenRevocationRepository{})

	accessToken, err := svc.tm.GenerateAccessToken(user)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), accessToken)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestAuthService_RefreshToken_RejectsRevoked(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")

	mockRevokeRepo := &MockTokenRevocationRepository{
		IsTokenRevokedFunc: func(ctx context.Context, jti string) (bool, error) {
			return true, nil
		},
	}

	svc := newAuthService(&MockUserRepository{}, mockRevokeRepo)

	refreshToken, err := svc.tm.GenerateRefreshToken(user)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), refreshToken)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	user := NewTestUser("user123", "student@example.com", "SecurePassword123")

	var revokedJTI string
	mockRevokeRepo := &MockTokenRevocationRepository{
		RevokeTokenFunc: func(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error {
			revokedJTI = jti
			assert.Equal(t, "logout", reason)
			return nil
		},
	}

	svc := newAuthService(&MockUserRepository{}, mockRevokeRepo)

	accessToken, err := svc.tm.GenerateAccessToken(user)
	require.NoError(t, err)

	err = svc.Logout(context.Background(), accessToken)

	require.NoError(t, err)
	assert.NotEmpty(t, revokedJTI)
}
