package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here only
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis (credential store + shared rate limiter)
	Redis RedisConfig

	// PostgreSQL (credential store when Redis is off)
	Database DatabaseConfig

	// NASDAQ public API
	Nasdaq NasdaqConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration. Empty URL = disabled.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NasdaqConfig holds NASDAQ API and session configuration
type NasdaqConfig struct {
	APIBaseURL string // https://api.nasdaq.com/api
	SiteURL    string // https://www.nasdaq.com
	UserAgent  string

	// Session credential
	CookieTTL    time.Duration // NASDAQ_COOKIE_TTL_SECONDS
	MintTimeout  time.Duration
	MintCommand  string // external browser automation; empty = HTTP minter
	WarmSchedule string // cron expression for the credential warmer; empty = off

	// Transport
	HTTPTimeout time.Duration
	RateLimit   float64 // requests per second, 0 = unlimited

	// Normalization
	EmptyMarkers []string
	DateLayouts  []string
}

// DefaultCookieTTLSeconds is the credential lifetime when NASDAQ_COOKIE_TTL_SECONDS is unset.
const DefaultCookieTTLSeconds = 1800

// DefaultUserAgent mimics a desktop Chrome build.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

// Load reads configuration from environment variables
// ⭐ SSOT: the only entry point that reads the environment (via the getEnv helpers)
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 0),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Nasdaq: NasdaqConfig{
			APIBaseURL:   strings.TrimRight(getEnv("NASDAQ_API_BASE_URL", "https://api.nasdaq.com/api"), "/"),
			SiteURL:      strings.TrimRight(getEnv("NASDAQ_SITE_URL", "https://www.nasdaq.com"), "/"),
			UserAgent:    getEnv("NASDAQ_USER_AGENT", DefaultUserAgent),
			CookieTTL:    time.Duration(getEnvAsInt("NASDAQ_COOKIE_TTL_SECONDS", DefaultCookieTTLSeconds)) * time.Second,
			MintTimeout:  getEnvAsDuration("NASDAQ_MINT_TIMEOUT", "60s"),
			MintCommand:  getEnv("NASDAQ_MINT_COMMAND", ""),
			WarmSchedule: getEnv("NASDAQ_WARM_SCHEDULE", ""),
			HTTPTimeout:  getEnvAsDuration("NASDAQ_HTTP_TIMEOUT", "30s"),
			RateLimit:    getEnvAsFloat("NASDAQ_RATE_LIMIT", 0),
			EmptyMarkers: getEnvAsList("NASDAQ_EMPTY_MARKERS", nil),
			DateLayouts:  getEnvAsList("NASDAQ_DATE_LAYOUTS", nil),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Nasdaq.CookieTTL <= 0 {
		return fmt.Errorf("NASDAQ_COOKIE_TTL_SECONDS must be positive")
	}

	if c.Nasdaq.MintTimeout <= 0 {
		return fmt.Errorf("NASDAQ_MINT_TIMEOUT must be positive")
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	if c.Nasdaq.RateLimit < 0 {
		return fmt.Errorf("NASDAQ_RATE_LIMIT must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a "|"-separated value. "|" is used because date layouts contain commas.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, "|")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		list = append(list, strings.TrimSpace(p))
	}
	return list
}
