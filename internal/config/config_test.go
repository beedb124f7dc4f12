package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ENGINE_TIME_BUDGET_MS", "")
	t.Setenv("DEFAULT_GRID_SIZE", "")

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver = %q", cfg.DBDriver)
	}
	if cfg.EngineTimeBudget != 500*time.Millisecond {
		t.Fatalf("engine budget = %v", cfg.EngineTimeBudget)
	}
	if cfg.DefaultGridSize != 4 {
		t.Fatalf("grid size = %d", cfg.DefaultGridSize)
	}
	if AppConfig != cfg {
		t.Fatalf("LoadConfig should publish AppConfig")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENGINE_TIME_BUDGET_MS", "120")
	t.Setenv("ENGINE_MAX_DEPTH", "2")
	t.Setenv("ENGINE_CACHE_LIMIT", "99")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DEFAULT_GRID_SIZE", "12")

	cfg := LoadConfig()
	engine := cfg.EngineConfig()
	if engine.TimeBudget != 120*time.Millisecond || engine.MaxDepth != 2 || engine.CacheLimit != 99 {
		t.Fatalf("engine config = %+v", engine)
	}
	if n := len(cfg.AllowedOrigins); n != 4 {
		t.Fatalf("expected 4 origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.DefaultGridSize != 4 {
		t.Fatalf("out of range grid size should fall back, got %d", cfg.DefaultGridSize)
	}
}

func TestPgxURLGetsSimpleProtocol(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")

	cfg := LoadConfig()
	if cfg.DatabaseURL != "postgres://u:p@localhost:5432/db?default_query_exec_mode=simple_protocol" {
		t.Fatalf("url = %q", cfg.DatabaseURL)
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	if got := GetEnvAsInt("SOME_INT", 7); got != 7 {
		t.Fatalf("got %d, want default", got)
	}
}
