package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// QuoteProviderKind selects which external quote source to wire in.
type QuoteProviderKind string

const (
	QuoteProviderYahoo   QuoteProviderKind = "yahoo"
	QuoteProviderBinance QuoteProviderKind = "binance"
)

// Config holds all application configuration.
type Config struct {
	// Account
	UserID string // Owner of all records in this single-user deployment

	// Database
	DBPath string

	// HTTP API
	HTTPAddr string

	// Quote Feed
	QuoteProvider        QuoteProviderKind
	QuoteRefreshInterval time.Duration // How often the price cache is refreshed
	QuoteHTTPTimeout     time.Duration
	QuoteCacheTTL        time.Duration

	// Logging
	LogLevel  string
	LogPretty bool
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	cfg.UserID = getEnv("USER_ID", "local")
	if cfg.UserID == "" {
		errs = append(errs, "USER_ID must be set")
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/runtimetrade.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8090")
	if cfg.HTTPAddr == "" {
		errs = append(errs, "HTTP_ADDR must be set")
	}

	providerStr := strings.ToLower(getEnv("QUOTE_PROVIDER", string(QuoteProviderYahoo)))
	switch QuoteProviderKind(providerStr) {
	case QuoteProviderYahoo, QuoteProviderBinance:
		cfg.QuoteProvider = QuoteProviderKind(providerStr)
	default:
		errs = append(errs, fmt.Sprintf("QUOTE_PROVIDER must be 'yahoo' or 'binance', got %q", providerStr))
	}

	refreshSeconds := getEnvAsInt("QUOTE_REFRESH_INTERVAL_SECONDS", 30)
	if refreshSeconds <= 0 {
		errs = append(errs, "QUOTE_REFRESH_INTERVAL_SECONDS must be positive")
	}
	cfg.QuoteRefreshInterval = time.Duration(refreshSeconds) * time.Second

	timeoutSeconds := getEnvAsInt("QUOTE_HTTP_TIMEOUT_SECONDS", 8)
	if timeoutSeconds <= 0 {
		errs = append(errs, "QUOTE_HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.QuoteHTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	ttlSeconds := getEnvAsInt("QUOTE_CACHE_TTL_SECONDS", 60)
	if ttlSeconds <= 0 {
		errs = append(errs, "QUOTE_CACHE_TTL_SECONDS must be positive")
	}
	cfg.QuoteCacheTTL = time.Duration(ttlSeconds) * time.Second

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", false)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
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
