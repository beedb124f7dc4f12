package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/auth"
)

const blockedTokenKeyPrefix = "blocked_token:"
const cacheTimeout = 2 * time.Second

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

var (
	ErrInvalidUsername    = fmt.Errorf("username must be %d to %d letters, digits, '_' or '-'", MinUsernameLength, MaxUsernameLength)
	ErrReservedUsername   = errors.New("username is reserved")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type UserRepository interface {
	CreateUser(username, passwordHash string) (int64, error)
	GetUserByUsername(username string) (*sqldb.User, error)
	GetUserByID(userID int64) (*sqldb.User, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// AuthService handles accounts and access tokens
type AuthService struct {
	users UserRepository
	cache CacheRepository // Optional, can be nil
}

func NewAuthService(users UserRepository, cache CacheRepository) *AuthService {
	return &AuthService{
		users: users,
		cache: cache,
	}
}

// ValidateUsername trims the name and checks its length, alphabet and the bot names.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return "", ErrInvalidUsername
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return "", ErrInvalidUsername
		}
	}
	if strings.EqualFold(username, "BOT") || domain.IsBotName(username) {
		return "", ErrReservedUsername
	}
	return username, nil
}

// Register creates an account and returns it with a fresh access token.
func (s *AuthService) Register(username, password string) (*sqldb.User, string, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return nil, "", err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	existing, err := s.users.GetUserByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	userID, err := s.users.CreateUser(username, hash)
	if err != nil {
		return nil, "", err
	}

	token, _, err := auth.GenerateAccessToken(userID, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	log.Info().Str("component", "auth").Str("username", username).Int64("user", userID).Msg("user registered")
	return &sqldb.User{ID: userID, Username: username, PasswordHash: hash, Rating: domain.DefaultRating}, token, nil
}

func (s *AuthService) Login(username, password string) (*sqldb.User, string, error) {
	user, err := s.users.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := auth.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return user, token, nil
}

// Logout revokes the token until it would have expired anyway. Without a cache it is a no-op.
func (s *AuthService) Logout(tokenString string) error {
	claims, err := auth.ValidateAccessToken(tokenString)
	if err != nil {
		return nil
	}
	return s.BlocklistToken(claims.ID, claims.RemainingTTL())
}

// BlocklistToken adds a token ID to the Redis blocklist with a TTL.
func (s *AuthService) BlocklistToken(tokenID string, ttl time.Duration) error {
	if s.cache == nil || tokenID == "" || ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	return s.cache.Set(ctx, blockedTokenKeyPrefix+tokenID, "1", ttl)
}

// IsTokenBlocked checks if a token ID is in the blocklist.
func (s *AuthService) IsTokenBlocked(tokenID string) bool {
	if s.cache == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	val, err := s.cache.Get(ctx, blockedTokenKeyPrefix+tokenID)
	if err != nil {
		// fail open: Redis is an optional dependency
		log.Warn().Str("component", "auth").Err(err).Msg("blocklist lookup failed")
		return false
	}
	return val != ""
}

// ValidateToken checks the signature, expiry and blocklist.
func (s *AuthService) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.IsTokenBlocked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) GetUser(userID int64) (*sqldb.User, error) {
	return s.users.GetUserByID(userID)
}
