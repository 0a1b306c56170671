package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Env != "dev" {
		t.Errorf("got env %q, want dev", cfg.Env)
	}

	if cfg.Port != 8080 {
		t.Errorf("got port %d, want 8080", cfg.Port)
	}

	if cfg.AccessTTL() != time.Hour {
		t.Errorf("got access ttl %v, want 1h", cfg.AccessTTL())
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		t.Error("expected a default CORS origin")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/parcelhub?sslmode=disable")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_ACCESS_TTL_MINUTES", "15")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("got port %d, want 9090", cfg.Port)
	}

	if cfg.DBURL != "postgres://u:p@db:5432/parcelhub?sslmode=disable" {
		t.Errorf("DATABASE_URL not honored, got %q", cfg.DBURL)
	}

	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORS origins not parsed, got %v", cfg.CORSAllowedOrigins)
	}

	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("got access ttl %v, want 15m", cfg.AccessTTL())
	}
}

func TestGetEnvIntBadValueFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("got port %d, want fallback 8080", cfg.Port)
	}
}
