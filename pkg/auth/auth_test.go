package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/config"
)

func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestAccessTokenRoundTrip(t *testing.T) {
	withConfig(t, &config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})

	token, issued, err := GenerateAccessToken(42, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Fatalf("token id mismatch: %q vs %q", claims.ID, issued.ID)
	}
	if ttl := claims.RemainingTTL(); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("remaining ttl = %v", ttl)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	withConfig(t, &config.Config{JWTSecret: "one", AccessTokenTTL: time.Hour})
	token, _, err := GenerateAccessToken(1, "bob")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	config.AppConfig = &config.Config{JWTSecret: "two", AccessTokenTTL: time.Hour}
	if _, err := ValidateAccessToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	withConfig(t, &config.Config{JWTSecret: "s", AccessTokenTTL: -time.Minute})
	token, _, err := GenerateAccessToken(1, "bob")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateAccessToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	withConfig(t, &config.Config{BcryptCost: bcrypt.MinCost})

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("secret1", hash) {
		t.Fatalf("password should match its hash")
	}
	if CheckPasswordHash("secret2", hash) {
		t.Fatalf("wrong password matched")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("abc12"); err == nil {
		t.Fatalf("short password accepted")
	}
	if err := ValidatePassword("      "); err == nil {
		t.Fatalf("blank password accepted")
	}
	if err := ValidatePassword("hunter2"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
}
