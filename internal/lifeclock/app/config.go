package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	StripeSecretKey   string // Required for checkout/confirm: provider API key
	CookieSecret      string // Required for confirm + gated routes: signs the access cookies
	PriceID           string // Required for checkout: the report's price id
	BaseURL           string // Fallback base URL for provider redirect targets
	AdminPasswordHash string // Optional: bcrypt hash guarding the admin endpoints

	DatabaseFile string // Path to the SQLite purchase ledger (default: ./lifeclock.db)
	BooksDir     string // Public library directory (default: ./public/books)
	DocsDir      string // Gated library directory (default: ./public/docs)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		CookieSecret:      os.Getenv("PAY_COOKIE_SECRET"),
		PriceID:           os.Getenv("LIFECLOCK_PRICE_ID"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		BaseURL:      getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "lifeclock.db"),
		BooksDir:     getEnvOrDefault("BOOKS_DIR", "public/books"),
		DocsDir:      getEnvOrDefault("DOCS_DIR", "public/docs"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// SecureCookies reports whether the Secure cookie attribute should be set.
// Only local development runs without it.
func (c Config) SecureCookies() bool {
	return c.Env != "dev"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
