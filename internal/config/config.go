package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseURL string

	// HTTP
	HTTPHost string
	HTTPPort string

	// Tokens
	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration
	ResetTokenSecret   string
	ResetTokenTTL      time.Duration

	// Credentials
	BcryptCost int
	OTPExpiry  time.Duration

	// Email
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	ResetURLBase string

	// Federation
	GoogleClientID string

	// Environment
	Environment string
	LogLevel    string

	// Workers
	EmailWorkerPoolSize int
	EmailTaskQueueSize  int
	CleanupInterval     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		HTTPHost:            getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		AccessTokenSecret:   getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret:  getEnv("REFRESH_TOKEN_SECRET", ""),
		ResetTokenSecret:    getEnv("RESET_TOKEN_SECRET", ""),
		BcryptCost:          getEnvInt("BCRYPT_COST", 12),
		SMTPHost:            getEnv("SMTP_HOST", "localhost"),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "noreply@example.com"),
		ResetURLBase:        getEnv("RESET_URL_BASE", "http://localhost:3000/reset-password"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		EmailWorkerPoolSize: getEnvInt("EMAIL_WORKER_POOL_SIZE", 5),
		EmailTaskQueueSize:  getEnvInt("EMAIL_TASK_QUEUE_SIZE", 100),
	}

	// Parse durations
	accessTTLMins := getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15)
	cfg.AccessTokenTTL = time.Duration(accessTTLMins) * time.Minute

	refreshTTLDays := getEnvInt("REFRESH_TOKEN_TTL_DAYS", 7)
	cfg.RefreshTokenTTL = time.Duration(refreshTTLDays) * 24 * time.Hour

	// Reset tokens live for one hour and verification codes for fifteen
	// minutes; both are fixed lifetimes, not tunables.
	cfg.ResetTokenTTL = time.Hour
	cfg.OTPExpiry = 15 * time.Minute

	cleanupIntervalMins := getEnvInt("CLEANUP_INTERVAL_MINUTES", 5)
	cfg.CleanupInterval = time.Duration(cleanupIntervalMins) * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.ResetTokenSecret == "" {
		return fmt.Errorf("RESET_TOKEN_SECRET is required")
	}
	if len(c.AccessTokenSecret) < 32 || len(c.RefreshTokenSecret) < 32 {
		return fmt.Errorf("token secrets must be at least 32 characters")
	}
	return nil
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}
