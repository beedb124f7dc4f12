package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	FrontendURL    string

	DBDriver             string
	DatabaseURL          string
	SQLitePath           string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string
	RoomTTL       time.Duration

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	EngineTimeBudget time.Duration
	EngineMaxDepth   int
	EngineCacheLimit int
	BotMoveDelay     time.Duration
	DefaultGridSize  int

	LogLevel  string
	LogFormat string
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOriginsStr := GetEnv("ALLOWED_ORIGINS", "")

	// Build allowed origins list (Frontend URL + Localhost + CSV values)
	allowedOrigins := []string{
		frontendURL,
		"http://localhost:5173", // Local development
	}
	if allowedOriginsStr != "" {
		extras := strings.Split(allowedOriginsStr, ",")
		for _, origin := range extras {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Database Config
	dbDriver := GetEnv("DB_DRIVER", "sqlite")
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if dbDriver == "pgx" && dbURL != "" {
		// Append simple_protocol for PgBouncer compatibility (pgx driver)
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	gridSize := GetEnvAsInt("DEFAULT_GRID_SIZE", domain.DefaultGridSize)
	if gridSize < domain.MinGridSize || gridSize > domain.MaxGridSize {
		log.Warn().Int("grid_size", gridSize).Msg("DEFAULT_GRID_SIZE out of range, using default")
		gridSize = domain.DefaultGridSize
	}

	AppConfig = &Config{
		Port:           port,
		AllowedOrigins: allowedOrigins,
		FrontendURL:    frontendURL,

		DBDriver:             dbDriver,
		DatabaseURL:          dbURL,
		SQLitePath:           GetEnv("SQLITE_PATH", "reverse-tictactoe.db"),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RoomTTL:       GetEnvAsDuration("ROOM_TTL_HOURS", 24, time.Hour),

		// Security
		JWTSecret:      GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		AccessTokenTTL: GetEnvAsDuration("ACCESS_TOKEN_TTL_MINUTES", 60*24, time.Minute),
		BcryptCost:     GetEnvAsInt("BCRYPT_COST", 10),

		EngineTimeBudget: GetEnvAsDuration("ENGINE_TIME_BUDGET_MS", 500, time.Millisecond),
		EngineMaxDepth:   GetEnvAsInt("ENGINE_MAX_DEPTH", 0),
		EngineCacheLimit: GetEnvAsInt("ENGINE_CACHE_LIMIT", bot.DefaultCacheLimit),
		BotMoveDelay:     GetEnvAsDuration("BOT_MOVE_DELAY_MS", 500, time.Millisecond),
		DefaultGridSize:  gridSize,

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "pretty"),
	}

	return AppConfig
}

// EngineConfig is the search configuration every game session starts from.
func (c *Config) EngineConfig() bot.Config {
	return bot.Config{
		TimeBudget: c.EngineTimeBudget,
		MaxDepth:   c.EngineMaxDepth,
		CacheLimit: c.EngineCacheLimit,
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit.
func GetEnvAsDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(GetEnvAsInt(key, defaultValue)) * unit
}
