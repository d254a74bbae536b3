// Package config loads server configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort      int
	DBPath        string
	JWTSecret     string
	TokenDuration time.Duration
}

// Load reads configuration from a .env file (when present) and the
// environment, with development defaults.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded configuration from .env")
	}

	cfg := Config{
		HTTPPort:      8080,
		DBPath:        getEnv("DB_PATH", "./data/tally.db"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenDuration: 24 * time.Hour,
	}

	if port := os.Getenv("HTTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			slog.Warn("invalid HTTP_PORT, using default", "value", port, "default", cfg.HTTPPort)
		} else {
			cfg.HTTPPort = p
		}
	}
	if d := os.Getenv("TOKEN_DURATION"); d != "" {
		dur, err := time.ParseDuration(d)
		if err != nil {
			slog.Warn("invalid TOKEN_DURATION, using default", "value", d, "default", cfg.TokenDuration)
		} else {
			cfg.TokenDuration = dur
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
