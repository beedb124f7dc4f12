package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/session"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/transport/http/middleware"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/auth"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/httputil"
)

const leaderboardSize = 20

type Disconnector interface {
	DisconnectUser(userID int64, reason string)
}

type LeaderboardStore interface {
	GetLeaderboard(limit int) ([]sqldb.PlayerStats, error)
}

type AuthHandler struct {
	Auth        *session.AuthService
	Leaders     LeaderboardStore
	ConnManager Disconnector // Optional, can be nil
}

func NewAuthHandler(as *session.AuthService, leaders LeaderboardStore, cm Disconnector) *AuthHandler {
	return &AuthHandler{
		Auth:        as,
		Leaders:     leaders,
		ConnManager: cm,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if _, err := session.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.Auth.Register(req.Username, req.Password)
	if errors.Is(err, session.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}
	if err != nil {
		log.Error().Str("component", "auth").Err(err).Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	httputil.SetAuthCookie(c.Writer, token)
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user.UserResponse(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, token, err := h.Auth.Login(req.Username, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Str("component", "auth").Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	httputil.SetAuthCookie(c.Writer, token)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.UserResponse(),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token := c.GetString(middleware.TokenKey); token != "" {
		if err := h.Auth.Logout(token); err != nil {
			log.Warn().Str("component", "auth").Err(err).Msg("failed to revoke token")
		}
	}
	if userID, ok := middleware.UserID(c); ok && h.ConnManager != nil {
		h.ConnManager.DisconnectUser(userID, "Logged out")
	}
	httputil.ClearAuthCookie(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.Auth.GetUser(userID)
	if err != nil {
		log.Error().Str("component", "auth").Int64("user", userID).Err(err).Msg("/me lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := user.UserResponse()
	response["token"] = c.GetString(middleware.TokenKey)
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Leaderboard(c *gin.Context) {
	stats, err := h.Leaders.GetLeaderboard(leaderboardSize)
	if err != nil {
		log.Error().Str("component", "db").Err(err).Msg("leaderboard query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
