// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application runtime configuration.
type Config struct {
	Env      string
	LogLevel string
	HTTPPort string

	DatabaseURL      string
	DBMaxConns       int
	DBMinConns       int
	StatementTimeout time.Duration

	JWTSecret string
	JWTIssuer string

	// StockCreditPoint is "distribution" or "acceptance".
	StockCreditPoint string
	// InvoiceLocation renders the date part of invoice numbers.
	InvoiceLocation *time.Location
	// BatchDefaultWindow bounds batch listings when no date range is given.
	BatchDefaultWindow time.Duration
	BatchMaxRows       int

	RateLimitEnabled   bool
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("APP_PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:       getEnvInt("DB_MIN_CONNS", 2),
		StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 30*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnv("JWT_ISSUER", "retailops"),

		StockCreditPoint:   strings.ToLower(getEnv("STOCK_CREDIT_POINT", "distribution")),
		BatchDefaultWindow: time.Duration(getEnvInt("BATCH_DEFAULT_WINDOW_DAYS", 365)) * 24 * time.Hour,
		BatchMaxRows:       getEnvInt("BATCH_MAX_ROWS", 10000),

		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	loc, err := time.LoadLocation(getEnv("INVOICE_TIMEZONE", "UTC"))
	if err != nil {
		return cfg, fmt.Errorf("INVOICE_TIMEZONE: %w", err)
	}
	cfg.InvoiceLocation = loc

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.StockCreditPoint != "distribution" && cfg.StockCreditPoint != "acceptance" {
		return cfg, fmt.Errorf("STOCK_CREDIT_POINT must be distribution or acceptance, got %q", cfg.StockCreditPoint)
	}
	if cfg.BatchMaxRows <= 0 {
		return cfg, errors.New("BATCH_MAX_ROWS must be positive")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
