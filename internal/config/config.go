package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinDeviceSecretLength is the shortest accepted HMAC-SHA256 signing secret.
const MinDeviceSecretLength = 32

// Config holds the server settings read from the environment.
type Config struct {
	Port         string
	DatabasePath string
	DeviceSecret string
	CookieSecure bool

	TickInterval      time.Duration
	PlayerIdleTimeout time.Duration // stopped players unused this long are dropped
	CatalogPath       string        // empty uses the embedded catalog
	LogLevel          slog.Level
	DevRoutes         bool

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         envOrDefault("PORT", "8080"),
		DatabasePath: envOrDefault("DATABASE_PATH", "praylude.db"),
		DeviceSecret: os.Getenv("DEVICE_SECRET"),
		// Default to secure cookies; disable only for local development.
		CookieSecure: os.Getenv("COOKIE_SECURE") != "false",
		CatalogPath:  os.Getenv("CATALOG_PATH"),
		DevRoutes:    os.Getenv("DEV_ROUTES") == "true",
	}

	if cfg.DeviceSecret == "" {
		return nil, errors.New("DEVICE_SECRET environment variable is required")
	}
	if len(cfg.DeviceSecret) < MinDeviceSecretLength {
		return nil, fmt.Errorf("DEVICE_SECRET must be at least %d characters for HMAC-SHA256 security", MinDeviceSecretLength)
	}

	interval, err := positiveDuration("TICK_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	cfg.TickInterval = interval

	idle, err := positiveDuration("PLAYER_IDLE_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	cfg.PlayerIdleTimeout = idle

	level, err := parseLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	rate, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
	}
	if rate < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_SECOND must not be negative, got %v", rate)
	}
	cfg.RateLimitPerSecond = rate

	burst, err := strconv.Atoi(envOrDefault("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if burst < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", burst)
	}
	cfg.RateLimitBurst = burst

	return cfg, nil
}

func positiveDuration(key, defaultVal string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, defaultVal))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
