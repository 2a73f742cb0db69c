package utils

import (
	"testing"
	"time"
)

func init() {
	SetJWTSecret("test-secret-key-for-testing")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("u-1", "founder@example.com", "FOUNDER", 24)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if len(token) < 50 {
		t.Errorf("token seems too short: %d chars", len(token))
	}
}

func TestParseToken(t *testing.T) {
	token, _ := GenerateToken("u-42", "vc@example.com", "INVESTOR", 24)

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != "u-42" {
		t.Errorf("UserID = %q, expected %q", claims.UserID, "u-42")
	}
	if claims.Email != "vc@example.com" {
		t.Errorf("Email = %q, expected %q", claims.Email, "vc@example.com")
	}
	if claims.Role != "INVESTOR" {
		t.Errorf("Role = %q, expected %q", claims.Role, "INVESTOR")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) should return error", token)
		}
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	SetJWTSecret("original-secret")
	token, _ := GenerateToken("u-1", "a@b.c", "FOUNDER", 24)

	SetJWTSecret("different-secret")
	_, err := ParseToken(token)

	SetJWTSecret("test-secret-key-for-testing")

	if err == nil {
		t.Error("ParseToken should fail with wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := GenerateToken("u-1", "a@b.c", "FOUNDER", -1)
	if _, err := ParseToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestStateToken_NotUsableAsAccessToken(t *testing.T) {
	state, err := GenerateStateToken("u-1", "a@b.c", 10*time.Minute)
	if err != nil {
		t.Fatalf("GenerateStateToken() error = %v", err)
	}

	if _, err := ParseToken(state); err == nil {
		t.Error("state token must not authenticate API calls")
	}

	claims, err := ParseStateToken(state)
	if err != nil {
		t.Fatalf("ParseStateToken() error = %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("UserID = %q, expected %q", claims.UserID, "u-1")
	}

	access, _ := GenerateToken("u-1", "a@b.c", "FOUNDER", 1)
	if _, err := ParseStateToken(access); err == nil {
		t.Error("access token must not pass as OAuth state")
	}
}

func TestGenerateToken_Expiration(t *testing.T) {
	token, _ := GenerateToken("u-1", "a@b.c", "FOUNDER", 1)
	claims, _ := ParseToken(token)

	expectedExpiry := time.Now().Add(time.Hour)
	diff := claims.ExpiresAt.Time.Sub(expectedExpiry)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiration time is off by more than 1 minute: %v", diff)
	}
}
