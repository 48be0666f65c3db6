package app

import (
	"testing"
	"time"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    1 * time.Hour,
		Issuer:    "test-issuer",
	}
	tm := NewTokenManager(cfg)

	token, err := tm.Generate(1001, "Alice", "127.0.0.1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	user, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if user.UID != 1001 {
		t.Errorf("Expected UID 1001, got %d", user.UID)
	}
	if user.Nickname != "Alice" {
		t.Errorf("Expected Nickname Alice, got %s", user.Nickname)
	}
	if user.Issuer != "test-issuer" {
		t.Errorf("Expected issuer test-issuer, got %s", user.Issuer)
	}

	// 验证过期时间 (秒级 Unix 戳，允许 1 秒内的误差)
	expectedExp := time.Now().Add(cfg.Expiry)
	if user.ExpiresAt.Unix() < expectedExp.Unix()-1 || user.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, user.ExpiresAt)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret"})

	token, err := tm.Generate(1001, "Alice", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := ParseTokenWithKey(token, "wrong-secret"); err == nil {
		t.Error("Expected parse error with wrong secret, got nil")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: -1 * time.Minute})

	token, err := tm.Generate(1001, "Alice", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := tm.Validate(token); err == nil {
		t.Error("Expected validation error for expired token, got nil")
	}
}

func TestTokenManager_Defaults(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret"})

	token, err := tm.Generate(1, "Bob", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	user, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if user.Issuer != DefaultTokenIssuer {
		t.Errorf("Expected default issuer %s, got %s", DefaultTokenIssuer, user.Issuer)
	}
}
