package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/reverse-tictactoe/backend/pkg/auth"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/httputil"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	TokenKey    = "token"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware validates the bearer token or auth cookie and stores the caller in the context.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			httputil.ClearAuthCookie(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(TokenKey, tokenString)
		c.Next()
	}
}

// UserID reads the id stored by AuthMiddleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
