// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Host string `env:"SYMCHECK_HOST"`
	Port int    `env:"SYMCHECK_PORT" envDefault:"8080"`

	Storage    string `env:"SYMCHECK_STORAGE"     envDefault:"memory"`
	RedisURL   string `env:"SYMCHECK_REDIS_URL"`
	SQLitePath string `env:"SYMCHECK_SQLITE_PATH" envDefault:"data/symcheck.db"`

	SymptomsPath string `env:"SYMCHECK_SYMPTOMS_PATH" envDefault:"data/symptoms.json"`
	ModelPath    string `env:"SYMCHECK_MODEL_PATH"    envDefault:"data/model.json"`

	PasswordHash    string        `env:"SYMCHECK_PASSWORD_HASH"    envDefault:"bcrypt-sha256"`
	SessionDuration time.Duration `env:"SYMCHECK_SESSION_DURATION" envDefault:"24h"`

	LogLevel  string `env:"SYMCHECK_LOG_LEVEL"  envDefault:"info"`
	StaticDir string `env:"SYMCHECK_STATIC_DIR"`
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("SYMCHECK_REDIS_URL required when SYMCHECK_STORAGE=redis")
		}
	default:
		return fmt.Errorf("invalid SYMCHECK_STORAGE %q: must be memory, redis or sqlite", c.Storage)
	}

	switch c.PasswordHash {
	case "bcrypt-sha256", "sha256":
	default:
		return fmt.Errorf("invalid SYMCHECK_PASSWORD_HASH %q: must be bcrypt-sha256 or sha256", c.PasswordHash)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SYMCHECK_PORT %d", c.Port)
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("SYMCHECK_SESSION_DURATION must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid SYMCHECK_LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}
