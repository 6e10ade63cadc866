package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	SessionTTL  time.Duration
	SeedRooms   bool
	LogLevelRaw string
}

// Load parses configuration values from the current process environment.
// A .env file in the working directory is merged in first when present;
// real environment variables always win.
//
// The loader applies defaults for optional fields while validating the
// supplied values and reporting every invalid entry at once.
func Load() (Config, error) {
	// Ignore a missing .env; it is a development convenience only.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:easybooking.db",
		SessionTTL: 24 * time.Hour,
		SeedRooms:  true,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("BOOKING_SEED_ROOMS")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_SEED_ROOMS")
		} else {
			cfg.SeedRooms = seed
		}
	}

	cfg.LogLevelRaw = strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL"))

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// LogLevel resolves the configured log level, defaulting to info.
func (c Config) LogLevel() (string, error) {
	switch strings.ToLower(c.LogLevelRaw) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn":
		return "warn", nil
	case "error":
		return "error", nil
	}
	return "", fmt.Errorf("invalid environment variable values: BOOKING_LOG_LEVEL")
}
