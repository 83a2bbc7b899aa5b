package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/calderonm/spinqueue/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DBDriver     string // sqlite or postgres
	DBPath       string // sqlite file path
	DatabaseURL  string // postgres connection string
	AuthURL      string // identity provider base URL
	AuthAPIKey   string // identity provider service key
	LogLevel     string
	LogFormat    string
	FeedDisabled bool
}

// Load loads configuration from a .env file (if present) and environment
// variables with defaults.
func Load() *Config {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", constants.DefaultPort),
		DBDriver:     getEnv("DB_DRIVER", constants.DefaultDBDriver),
		DBPath:       getEnv("DB_PATH", constants.DefaultDBPath),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AuthURL:      getEnv("AUTH_URL", ""),
		AuthAPIKey:   getEnv("AUTH_SERVICE_KEY", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		FeedDisabled: getEnv("FEED_DISABLED", "") == "true",
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	switch c.DBDriver {
	case constants.DriverSQLite:
		if c.DBPath == "" {
			errors = append(errors, "DB_PATH cannot be empty when DB_DRIVER is sqlite")
		}
	case constants.DriverPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when DB_DRIVER is postgres")
		}
	default:
		errors = append(errors, fmt.Sprintf("DB_DRIVER must be one of: sqlite, postgres, got: %s", c.DBDriver))
	}

	if c.AuthURL == "" {
		errors = append(errors, "AUTH_URL cannot be empty")
	} else {
		if _, err := url.Parse(c.AuthURL); err != nil {
			errors = append(errors, fmt.Sprintf("AUTH_URL is not a valid URL: %s", c.AuthURL))
		}
	}

	if c.AuthAPIKey == "" {
		errors = append(errors, "AUTH_SERVICE_KEY cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
