package config

import (
	"strings"
	"testing"

	"github.com/calderonm/spinqueue/internal/constants"
)

func validConfig() *Config {
	return &Config{
		Port:       "4000",
		DBDriver:   constants.DriverSQLite,
		DBPath:     "test.db",
		AuthURL:    "http://localhost:9999",
		AuthAPIKey: "service-key",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}
	if cfg.DBDriver != constants.DriverSQLite {
		t.Errorf("Expected DBDriver to be sqlite, got %s", cfg.DBDriver)
	}
	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/spinqueue")
	t.Setenv("AUTH_URL", "http://auth.example.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Expected Port 9090, got %s", cfg.Port)
	}
	if cfg.DBDriver != constants.DriverPostgres {
		t.Errorf("Expected DBDriver postgres, got %s", cfg.DBDriver)
	}
	if cfg.DatabaseURL != "postgres://localhost/spinqueue" {
		t.Errorf("Expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.AuthURL != "http://auth.example.com" {
		t.Errorf("Expected AuthURL from env, got %s", cfg.AuthURL)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config to pass, got: %v", err)
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		expected string
	}{
		{"empty port", func(c *Config) { c.Port = "" }, "PORT"},
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "PORT"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "DB_DRIVER"},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }, "DB_PATH"},
		{"postgres without url", func(c *Config) {
			c.DBDriver = "postgres"
			c.DatabaseURL = ""
		}, "DATABASE_URL"},
		{"missing auth url", func(c *Config) { c.AuthURL = "" }, "AUTH_URL"},
		{"missing auth key", func(c *Config) { c.AuthAPIKey = "" }, "AUTH_SERVICE_KEY"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error mentioning %s, got: %v", tt.expected, err)
			}
		})
	}
}
