package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DevJWTSecret is the insecure signing secret used when none is configured
const DevJWTSecret = "default_dev_key_CHANGE_IN_PRODUCTION"

// Store drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds all server configuration
type Config struct {
	Port        string
	Environment string
	StoreDriver string
	DataDir     string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
	CORSOrigins []string
	JWTSecret   string
	TokenTTL    time.Duration
	LogLevel    string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("APP_ENV", "development"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		DataDir:     getEnv("DATA_DIR", "./data"),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/carcatalog.db"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix: getEnv("REDIS_PREFIX", "carcatalog:"),
		CORSOrigins: parseCORSOrigins(getEnv("CORS_ORIGINS", "*")),
		JWTSecret:   getEnv("JWT_SECRET_KEY", DevJWTSecret),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	switch cfg.StoreDriver {
	case DriverFile, DriverSQLite, DriverRedis, DriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q", cfg.StoreDriver)
	}

	// Parse TOKEN_TTL
	ttlStr := getEnv("TOKEN_TTL", "24h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttlStr)
	}
	cfg.TokenTTL = ttl

	if cfg.IsProduction() && cfg.JWTSecret == DevJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be set when APP_ENV=production")
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseCORSOrigins parses a comma-separated list of CORS origins
func parseCORSOrigins(origins string) []string {
	if origins == "*" {
		return []string{"*"}
	}

	var result []string
	for _, origin := range strings.Split(origins, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return []string{"*"}
	}

	return result
}
