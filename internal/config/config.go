package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/wasatext/internal/constants"
)

// Config holds the server configuration
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":3000"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"./data/wasatext.db"`
	UploadsDir    string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	Environment   string `env:"APP_ENV" envDefault:"production"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`
	Auth          AuthConfig
	CORS          CORSConfig
	Cleanup       CleanupConfig
}

// AuthConfig selects how bearer identifiers are issued
type AuthConfig struct {
	TokenMode string `env:"AUTH_TOKEN_MODE" envDefault:"plain"` // plain | jwt
	JWTSecret string `env:"JWT_SECRET"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
}

// CleanupConfig schedules the uploads janitor. An empty schedule disables it.
type CleanupConfig struct {
	Schedule string `env:"UPLOADS_CLEANUP_SCHEDULE" envDefault:"@hourly"`
}

// ClientConfig holds the command line client configuration
type ClientConfig struct {
	APIURL      string `env:"WASATEXT_API_URL"`
	StoragePath string `env:"WASATEXT_STORAGE"`
	Debug       bool   `env:"WASATEXT_DEBUG" envDefault:"false"`
}

// Load reads .env (when present) and the environment into a validated Config
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORS.AllowedOrigins = cleanList(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads .env (when present) and the environment into a ClientConfig
func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	return cfg, nil
}

// Validate rejects inconsistent settings
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerAddress) == "" {
		return errors.New("SERVER_ADDRESS cannot be empty")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("DATABASE_PATH cannot be empty")
	}
	if strings.TrimSpace(c.UploadsDir) == "" {
		return errors.New("UPLOADS_DIR cannot be empty")
	}

	switch c.Auth.TokenMode {
	case "plain":
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_TOKEN_MODE=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_TOKEN_MODE %q (want plain or jwt)", c.Auth.TokenMode)
	}

	if c.Cleanup.Schedule != "" {
		if _, err := cron.ParseStandard(c.Cleanup.Schedule); err != nil {
			return fmt.Errorf("invalid UPLOADS_CLEANUP_SCHEDULE: %w", err)
		}
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == constants.EnvDevelopment
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// cleanList trims items and drops empty ones
func cleanList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
