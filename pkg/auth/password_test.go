package auth

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{name: "valid strong password", password: "SecurePass123"},
		{name: "too short", password: "Pa1", shouldFail: true},
		{name: "too long", password: "Aa1" + strings.Repeat("x", 130), shouldFail: true},
		{name: "missing uppercase", password: "securepass123", shouldFail: true},
		{name: "missing lowercase", password: "SECUREPASS123", shouldFail: true},
		{name: "missing digit", password: "SecurePassword", shouldFail: true},
		// The common-password check is case-insensitive.
		{name: "common password rejected", password: "Password123", shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.shouldFail && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tt.password)
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("SecurePass123")
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}

	if err := ComparePassword(hash, "SecurePass123"); err != nil {
		t.Errorf("ComparePassword() = %v, want nil for matching password", err)
	}

	if err := ComparePassword(hash, "WrongPass123"); err == nil {
		t.Error("ComparePassword() = nil, want error for wrong password")
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") = nil, want error")
	}
}
