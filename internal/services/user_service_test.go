package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aula-platform/aula/internal/models"
	pkgauth "github.com/aula-platform/aula/pkg/auth"
	pkglogger "github.com/aula-platform/aula/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(repo UserRepository) *UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(repo, logger, pkglogger.NewAuditLogger(logger))
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	var created *models.User
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			user.ID = "user1"
			return user, nil
		},
	}

	svc := newUserService(repo)

	user, err := svc.Create(context.Background(), "Teacher@Example.com", "SecurePassword123", "Ms. Frizzle", models.RoleTeacher)

	require.NoError(t, err)
	assert.Equal(t, "teacher@example.com", user.Email)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.NotEqual(t, "SecurePassword123", created.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(created.PasswordHash, "SecurePassword123"))
}

func TestUserService_Create_RejectsWeakPassword(t *testing.T) {
	svc := newUserService(&MockUserRepository{})

	user, err := svc.Create(context.Background(), "user@example.com", "short", "User", models.RoleStudent)

	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestUserService_SetStatus_ValidTransitions(t *testing.T) {
	stored := NewTestUser("user1", "student@example.com", "SecurePassword123")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) { return stored, nil },
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return user, nil
		},
	}

	svc := newUserService(repo)

	updated, err := svc.SetStatus(context.Background(), "user1", models.StatusSuspended, "admin1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, updated.Status)
}

func TestUserService_SetStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newUserService(&MockUserRepository{})

	updated, err := svc.SetStatus(context.Background(), "user1", "banned", "admin1")

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Nil(t, updated)
}

func TestUserService_ChangePassword_VerifiesCurrent(t *testing.T) {
	stored := NewTestUser("user1", "student@example.com", "SecurePassword123")

	var newHash string
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) { return stored, nil },
		UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}

	svc := newUserService(repo)

	err := svc.ChangePassword(context.Background(), "user1", "WrongPassword123", "AnotherSecure123")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	err = svc.ChangePassword(context.Background(), "user1", "SecurePassword123", "AnotherSecure123")
	require.NoError(t, err)
	assert.NoError(t, pkgauth.ComparePassword(newHash, "AnotherSecure123"))
}

func TestUserService_List_ClampsLimit(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &MockUserRepository{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
			gotLimit = limit
			gotOffset = offset
			return []*models.User{}, nil
		},
	}

	svc := newUserService(repo)

	_, err := svc.List(context.Background(), 5000, -3)

	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotOffset)
}
