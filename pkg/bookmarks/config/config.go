package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mikepea/bookmarks/pkg/bookmarks/database"
	"github.com/mikepea/bookmarks/pkg/bookmarks/logger"
	"github.com/mikepea/bookmarks/pkg/bookmarks/shortcode"
)

const (
	// DevJWTSecret is only suitable for local development.
	DevJWTSecret = "dev-secret-change-me-in-production"

	minSecretLength = 16
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	App      AppConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	BaseURL         string        `envconfig:"BOOKMARKS_BASE_URL" default:"http://localhost:8080"`
	GinMode         string        `envconfig:"GIN_MODE" default:"release"`
	ReadTimeout     time.Duration `envconfig:"BOOKMARKS_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"BOOKMARKS_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"BOOKMARKS_SHUTDOWN_TIMEOUT" default:"15s"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode: %s (must be one of: debug, release, test)", c.GinMode)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver string `envconfig:"BOOKMARKS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"BOOKMARKS_DB_DSN" default:"bookmarks.db"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Driver != database.DriverSQLite && c.Driver != database.DriverPostgres {
		return fmt.Errorf("invalid database driver: %s (must be one of: sqlite, postgres)", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}
	return nil
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	Secret     string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me-in-production"`
	AccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
	RefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"720h"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT secret must be at least %d bytes", minSecretLength)
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return fmt.Errorf("refresh token TTL (%s) must be longer than access token TTL (%s)", c.RefreshTTL, c.AccessTTL)
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	ShortCodeLength int    `envconfig:"BOOKMARKS_SHORT_CODE_LENGTH" default:"6"`
	LogLevel        string `envconfig:"BOOKMARKS_LOG_LEVEL" default:"info"` // debug, info, warn, error
	LogPretty       bool   `envconfig:"BOOKMARKS_LOG_PRETTY" default:"false"`
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	if c.ShortCodeLength < shortcode.MinLength || c.ShortCodeLength > shortcode.MaxLength {
		return fmt.Errorf("short code length must be between %d and %d, got %d",
			shortcode.MinLength, shortcode.MaxLength, c.ShortCodeLength)
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid Server config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("invalid Database config: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid Auth config: %w", err)
	}
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("invalid App config: %w", err)
	}
	return nil
}

// Load reads configuration from the environment and validates it.
// A .env file, if wanted, must be loaded by the caller first.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load Database config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Auth); err != nil {
		return nil, fmt.Errorf("failed to load Auth config: %w", err)
	}
	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesDevSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDevSecret() bool {
	return c.Auth.Secret == DevJWTSecret
}
