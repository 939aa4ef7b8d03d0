// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/tournament.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	AdminToken  string // guards write routes when set

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Snapshot archive (S3-compatible)
	ArchiveBucket    string
	ArchiveEndpoint  string // empty = AWS S3
	ArchiveRegion    string
	ArchiveGzip      bool
	ArchiveAccessKey string // empty = default AWS credential chain
	ArchiveSecretKey string
	SnapshotInterval time.Duration // 0 disables periodic snapshots
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		AdminToken:  envOr("ADMIN_TOKEN", ""),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		ArchiveBucket:    envOr("ARCHIVE_BUCKET", ""),
		ArchiveEndpoint:  envOr("ARCHIVE_ENDPOINT", ""),
		ArchiveRegion:    envOr("ARCHIVE_REGION", "us-east-1"),
		ArchiveGzip:      envBool("ARCHIVE_GZIP", true),
		ArchiveAccessKey: envOr("ARCHIVE_ACCESS_KEY_ID", ""),
		ArchiveSecretKey: envOr("ARCHIVE_SECRET_ACCESS_KEY", ""),
		SnapshotInterval: time.Duration(envInt("SNAPSHOT_INTERVAL_MINUTES", 0)) * time.Minute,
	}

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return nil, fmt.Errorf("API_PORT must be between 1 and 65535, got %d", cfg.APIPort)
	}
	if cfg.DBPoolMinConns > cfg.DBPoolMaxConns {
		return nil, fmt.Errorf("DB_POOL_MIN_CONNS (%d) exceeds DB_POOL_MAX_CONNS (%d)", cfg.DBPoolMinConns, cfg.DBPoolMaxConns)
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ArchiveEnabled reports whether a snapshot bucket is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
