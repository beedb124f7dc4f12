package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/config"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/redis"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/cleanup"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/game"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/session"
	transportHttp "github.com/iamasit07/reverse-tictactoe/backend/internal/transport/http"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/transport/websocket"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/logging"
)

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Info().Msg("no .env file found, using environment")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Database
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == sqldb.DriverSQLite {
		dsn = cfg.SQLitePath
	}
	db, err := sqldb.Open(cfg.DBDriver, dsn, sqldb.PoolConfig{
		MaxOpenConns:       cfg.DBMaxOpenConns,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database unavailable")
	}
	defer db.Close()

	gameRepo := sqldb.NewGameRepo(db)
	userRepo := sqldb.NewUserRepo(db)

	// 2. Redis (optional)
	if err := redis.InitRedis(cfg.RedisURL, cfg.RedisPassword); err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis")
	}
	defer redis.CloseRedis()

	var cache session.CacheRepository
	var rooms game.RoomStore
	var stored transportHttp.SnapshotLoader
	if redis.IsRedisEnabled() && redis.RedisClient != nil {
		cache = redis.NewRedisCache(redis.RedisClient)
		roomStore := redis.NewRoomStore(redis.RedisClient, cfg.RoomTTL)
		rooms = roomStore
		stored = roomStore
	}

	// 3. Services
	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewSessionManager(gameRepo, rooms, connManager, game.Options{
		Engine:   cfg.EngineConfig(),
		BotDelay: cfg.BotMoveDelay,
	})
	authService := session.NewAuthService(userRepo, cache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup.NewWorker(sessionManager).Start(ctx)

	// 4. HTTP
	wsHandler := websocket.NewHandler(connManager, sessionManager, authService, cfg.DefaultGridSize)
	router := transportHttp.NewRouter(cfg.AllowedOrigins, authService, transportHttp.Handlers{
		Auth:      transportHttp.NewAuthHandler(authService, userRepo, connManager),
		History:   transportHttp.NewHistoryHandler(gameRepo),
		Watch:     transportHttp.NewWatchHandler(sessionManager, stored),
		Engine:    transportHttp.NewEngineHandler(cfg.EngineConfig()),
		WebSocket: wsHandler.HandleWebSocket,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	sessionManager.WaitForSaves()

	log.Info().Msg("server exited gracefully")
}
