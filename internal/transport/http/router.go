package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/transport/http/middleware"
)

type Handlers struct {
	Auth      *AuthHandler
	History   *HistoryHandler
	Watch     *WatchHandler
	Engine    *EngineHandler
	WebSocket http.HandlerFunc
}

// NewRouter wires every route. Protected routes go through the token validator.
func NewRouter(allowedOrigins []string, validator middleware.TokenValidator, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(allowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Routes
	router.POST("/api/auth/register", h.Auth.Register)
	router.POST("/api/auth/login", h.Auth.Login)
	router.GET("/api/leaderboard", h.Auth.Leaderboard)
	router.POST("/api/engine/move", h.Engine.Move)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/history", h.History.GetHistory)
		protected.GET("/history/:id", h.History.GetGameDetails)

		protected.GET("/watch", h.Watch.GetLiveGames)
		protected.GET("/rooms/:code", h.Watch.GetRoom)
	}

	// auth happens inside the handler on the first frame
	if h.WebSocket != nil {
		router.GET("/ws", gin.WrapF(h.WebSocket))
	}

	return router
}
