package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKING_HTTP_PORT", "")
	t.Setenv("BOOKING_SQLITE_DSN", "")
	t.Setenv("BOOKING_SESSION_TTL", "")
	t.Setenv("BOOKING_SEED_ROOMS", "")
	t.Setenv("BOOKING_LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:easybooking.db" {
		t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default TTL 24h, got %v", cfg.SessionTTL)
	}
	if !cfg.SeedRooms {
		t.Fatalf("expected seeding enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_HTTP_PORT", "9090")
	t.Setenv("BOOKING_SQLITE_DSN", "file:custom.db")
	t.Setenv("BOOKING_SESSION_TTL", "1h30m")
	t.Setenv("BOOKING_SEED_ROOMS", "false")
	t.Setenv("BOOKING_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:custom.db" {
		t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Fatalf("expected TTL 1h30m, got %v", cfg.SessionTTL)
	}
	if cfg.SeedRooms {
		t.Fatalf("expected seeding disabled")
	}

	level, err := cfg.LogLevel()
	if err != nil || level != "debug" {
		t.Fatalf("expected debug level, got %q err=%v", level, err)
	}
}

func TestLoad_ReportsAllInvalidValues(t *testing.T) {
	t.Setenv("BOOKING_HTTP_PORT", "not-a-port")
	t.Setenv("BOOKING_SESSION_TTL", "soon")
	t.Setenv("BOOKING_SEED_ROOMS", "")
	t.Setenv("BOOKING_SQLITE_DSN", "")
	t.Setenv("BOOKING_LOG_LEVEL", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid values")
	}
	for _, name := range []string{"BOOKING_HTTP_PORT", "BOOKING_SESSION_TTL"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error, got %v", name, err)
		}
	}
}

func TestLogLevel_RejectsUnknown(t *testing.T) {
	cfg := Config{LogLevelRaw: "verbose"}
	if _, err := cfg.LogLevel(); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
