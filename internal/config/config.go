// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Runtime mode
	Env string // "development", "production", "testing"

	// Database selection: "pgx" for PostgreSQL, "sqlite" for embedded SQLite.
	DBDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SQLite database file, used when DBDriver is "sqlite".
	SQLitePath string

	// Valkey (Redis-compatible checkpoint store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Rebuild tuning
	PageSize     int // rows per batch in paged rebuilds
	MaxTreeDepth int // ancestor chain length treated as runaway
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Env: envOrDefault("APP_ENV", "development"),

		DBDriver: envOrDefault("DB_DRIVER", "pgx"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "flatcat"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "flatcat"),

		SQLitePath: envOrDefault("SQLITE_PATH", "flatcat.db"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		PageSize:     envOrDefaultInt("REBUILD_PAGE_SIZE", 1000),
		MaxTreeDepth: envOrDefaultInt("MAX_TREE_DEPTH", 500),
	}

	if cfg.DBDriver != "pgx" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be \"pgx\" or \"sqlite\", got %q", cfg.DBDriver)
	}

	if cfg.Env == "production" && cfg.DBDriver == "pgx" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrDefaultInt reads an integer environment variable. Unset, empty, or
// unparseable values fall back to the default.
func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
