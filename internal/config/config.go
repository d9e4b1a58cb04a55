// Package config handles resolving configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full application configuration, resolved from a YAML file
// overlaid with environment variables.
type Config struct {
	LogLevel      string   `yaml:"log_level" env:"PHONEBOOK_LOG_LEVEL" env-default:"INFO"`
	ListenAddress string   `yaml:"listen_address" env:"PHONEBOOK_LISTEN_ADDRESS" env-default:"localhost:9999"`
	DevMode       bool     `yaml:"dev_mode" env:"PHONEBOOK_DEV_MODE" env-default:"false"`
	Database      Database `yaml:"database"`
	Session       Session  `yaml:"session"`
}

// Database holds the Postgres connection settings.
type Database struct {
	Host     string `yaml:"host" env:"PHONEBOOK_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PHONEBOOK_DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"PHONEBOOK_DB_USER" env-default:"phonebook"`
	Password string `yaml:"password" env:"PHONEBOOK_DB_PASSWORD"`
	Name     string `yaml:"name" env:"PHONEBOOK_DB_NAME" env-default:"phonebook"`
	SSLMode  string `yaml:"ssl_mode" env:"PHONEBOOK_DB_SSL_MODE" env-default:"prefer"`
}

// Session holds the cookie-session settings.
type Session struct {
	Secret string        `yaml:"secret" env:"PHONEBOOK_SESSION_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"PHONEBOOK_SESSION_TTL" env-default:"24h"`
}

// DSN renders the database settings as a Postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// DefaultPath returns the conventional location of the config file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "phonebook", "config.yaml")
}

// Load loads a YAML configuration file from a path, overlays environment
// variables, and validates it for completeness.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.ListenAddress == "" {
		return errors.New("listen_address must be set")
	}
	// dev mode derives an ephemeral secret; production must supply one
	if !c.DevMode && c.Session.Secret == "" {
		return errors.New("session.secret must be set outside dev mode")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	return nil
}
