package auth

import (
	"testing"
	"time"

	"github.com/aula-platform/aula/internal/models"
)

const testSecret = "test-secret-that-is-long-enough-for-hmac-use"

func testUser() *models.User {
	return &models.User{
		ID:    "user-123",
		Email: "student@example.com",
		Role:  models.RoleStudent,
	}
}

func TestTokenManager_GenerateAndValidateAccessToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	tokenString, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.Type != "access" {
		t.Errorf("expected token type access, got %q", claims.Type)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user ID user-123, got %q", claims.UserID)
	}
	if claims.Role != models.RoleStudent {
		t.Errorf("expected role %q, got %q", models.RoleStudent, claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a JTI claim, got empty string")
	}
}

func TestTokenManager_RefreshTokenHasRefreshType(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	tokenString, err := tm.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.Type != "refresh" {
		t.Errorf("expected token type refresh, got %q", claims.Type)
	}
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, -1*time.Minute, 7*24*time.Hour)

	tokenString, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := tm.ValidateToken(tokenString); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)
	other := NewTokenManager("a-completely-different-secret-value-here", 15*time.Minute, 7*24*time.Hour)

	tokenString, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := other.ValidateToken(tokenString); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	if _, err := tm.ValidateToken("not.a.token"); err == nil {
		t.Error("expected malformed token to be rejected")
	}
}

func TestTokenManager_UniqueJTIs(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	first, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	second, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	firstClaims, _ := tm.ValidateToken(first)
	secondClaims, _ := tm.ValidateToken(second)

	if firstClaims.ID == secondClaims.ID {
		t.Error("expected distinct JTI claims for separately issued tokens")
	}
}
