package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DevJWTSecret is substituted by LoadWithDefaults when JWT_SECRET is unset.
const DevJWTSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	DB    DatabaseConfig
	HTTP  HTTPConfig
	Auth  AuthConfig
	Trace TraceConfig
	App   AppConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path         string `envconfig:"DB_PATH" default:"birthdays.db"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"4"`
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address         string        `envconfig:"HTTP_ADDRESS" default:":3000"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"168h"`
}

// TraceConfig configures OTLP trace export. An empty endpoint disables export.
type TraceConfig struct {
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"birthday-reminder-tracker"`
}

// AppConfig contains process-wide settings.
type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Timezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

// LoadDotenv loads variables from the given files (".env" when none are given)
// without overriding variables already set. Missing files are ignored.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a development default for JWT_SECRET.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = DevJWTSecret
	}
	return cfg, nil
}

func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.DB.MaxOpenConns < 1 {
		return nil, fmt.Errorf("config: DB_MAX_OPEN_CONNS must be positive, got %d", cfg.DB.MaxOpenConns)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: JWT_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves APP_TIMEZONE, the zone in which "today" is evaluated.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, CORS: %s, Auth: *** (masked) ***, TTL: %s, OTLP: %q, Env: %s, TZ: %s}",
		c.DB.Path, c.HTTP.Address, strings.Join(c.HTTP.CORSOrigins, ","), c.Auth.TokenTTL,
		c.Trace.OTLPEndpoint, c.App.Env, c.App.Timezone)
}
