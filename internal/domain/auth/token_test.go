package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: "u1", TenantID: "t1", RoleName: RoleHR}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.TenantID != claims.TenantID || parsed.RoleName != claims.RoleName {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expiry error")
	}
}
