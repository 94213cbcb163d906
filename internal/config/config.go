// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache). Empty host disables the article cache.
	ValkeyHost      string
	ValkeyPort      string
	ValkeyPassword  string
	ArticleCacheTTL time.Duration

	// HMAC secret for bearer tokens issued by the auth service.
	JWTSecret string

	// S3-compatible object storage for attachments.
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	UploadURLTTL time.Duration

	// PublicBaseURL prefixes stored object keys when building attachment URLs.
	PublicBaseURL string

	// Listing pagination
	DefaultPageLimit int
	MaxPageLimit     int

	// Authenticated write requests allowed per client per minute; 0 disables.
	WriteRateLimit int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "pressroom"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "pressroom"),

		ValkeyHost:      os.Getenv("VALKEY_HOST"),
		ValkeyPort:      envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword:  os.Getenv("VALKEY_PASSWORD"),
		ArticleCacheTTL: envDuration("ARTICLE_CACHE_TTL", 5*time.Minute),

		JWTSecret: os.Getenv("JWT_SECRET"),

		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3Region:     envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		S3Bucket:     envOrDefault("S3_BUCKET", "pressroom-attachments"),
		UploadURLTTL: envDuration("UPLOAD_URL_TTL", 15*time.Minute),

		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		DefaultPageLimit: envInt("DEFAULT_PAGE_LIMIT", 10),
		MaxPageLimit:     envInt("MAX_PAGE_LIMIT", 100),

		WriteRateLimit: envInt("WRITE_RATE_LIMIT", 60),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	if cfg.DefaultPageLimit < 1 || cfg.MaxPageLimit < cfg.DefaultPageLimit {
		return nil, fmt.Errorf("DEFAULT_PAGE_LIMIT must be between 1 and MAX_PAGE_LIMIT")
	}
	if cfg.WriteRateLimit < 0 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT must not be negative")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
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

// envInt reads an integer environment variable, falling back when unset or malformed.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration reads a Go duration string ("90s", "5m"), falling back when
// unset or malformed.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
