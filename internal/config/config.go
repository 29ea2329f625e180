package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string
	Env  string // development, production

	// Database configuration. DBType "none" (or an empty DBDatabase) selects
	// demo mode: users, sessions and listings live in process memory.
	DBType            string // mysql, postgres, sqlite, sqlserver, none
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Token configuration
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	// Lockout policy
	MaxLoginAttempts int
	LockDuration     time.Duration

	// Listing defaults
	PageSize  int
	SeedCount int
}

// DemoMode reports whether no persistent store is configured.
func (c *Config) DemoMode() bool {
	return c.DBType == "none" || c.DBType == "" || c.DBDatabase == ""
}

// Production reports whether the service runs with production error masking.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional, system environment still applies
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		Env:               getEnv("APP_ENV", "development"),
		DBType:            getEnv("DB_TYPE", "none"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		JWTSecret:         getEnv("JWT_SECRET", "fallback_secret"),
		JWTRefreshSecret:  getEnv("JWT_REFRESH_SECRET", "fallback_refresh_secret"),
		AccessTokenTTL:    getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL:   getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		MaxLoginAttempts:  getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
		LockDuration:      getEnvAsDuration("ACCOUNT_LOCK_DURATION", 2*time.Hour),
		PageSize:          getEnvAsInt("PAGE_SIZE", 12),
		SeedCount:         getEnvAsInt("SEED_COUNT", 100),
	}

	// Validate required fields when a persistent store is requested
	if !cfg.DemoMode() {
		if cfg.DBDatabase == "" {
			return nil, fmt.Errorf("DB_DATABASE is required for DB_TYPE=%s", cfg.DBType)
		}
		if cfg.DBType != "sqlite" && cfg.DBUser == "" {
			return nil, fmt.Errorf("DB_USER is required for DB_TYPE=%s", cfg.DBType)
		}
	}

	if cfg.Production() && cfg.JWTSecret == "fallback_secret" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
