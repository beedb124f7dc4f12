package uid

import (
	"github.com/google/uuid"
)

// GenerateGameID returns a random UUID for a stored game.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateTokenID identifies one access token so it can be revoked.
func GenerateTokenID() string {
	return uuid.NewString()
}
