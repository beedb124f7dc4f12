package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/config"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores anything longer
)

// HashPassword hashes a password using bcrypt at the configured cost
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if config.AppConfig != nil && config.AppConfig.BcryptCost >= bcrypt.MinCost {
		cost = config.AppConfig.BcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash checks if a password matches a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword enforces the length bounds and rejects blank passwords.
func ValidatePassword(password string) error {
	var failures []string

	if len(password) < MinPasswordLength {
		failures = append(failures, fmt.Sprintf("at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		failures = append(failures, fmt.Sprintf("at most %d bytes", MaxPasswordLength))
	}
	if strings.TrimSpace(password) == "" {
		failures = append(failures, "a non-space character")
	}

	if len(failures) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(failures, ", "))
	}

	return nil
}
