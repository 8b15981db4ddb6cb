package config

import (
	"os"
	"time"
)

// Config holds all configuration for the audit service.
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Model configuration. LLMProvider selects the generator backend:
	// "openai" or "stub" (offline, deterministic).
	LLMProvider  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Scraping configuration
	ScrapeTimeout      time.Duration
	MarketplaceBaseURL string

	// Per-stage deadline for analysis and store calls.
	StageTimeout time.Duration

	// E-mail configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	EmailTimeout      time.Duration

	// Session configuration
	JWTSecret  string
	SessionTTL time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "ectrl"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Model defaults
		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),

		// Scraping defaults
		ScrapeTimeout:      getDurationEnv("SCRAPE_TIMEOUT", 15*time.Second),
		MarketplaceBaseURL: getEnv("MARKETPLACE_BASE_URL", "https://www.amazon.co.uk"),

		StageTimeout: getDurationEnv("STAGE_TIMEOUT", 60*time.Second),

		// E-mail defaults
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "reports@e-ctrl.co.uk"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "E-CTRL"),
		EmailTimeout:      getDurationEnv("EMAIL_TIMEOUT", 30*time.Second),

		// Session defaults
		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getDurationEnv("SESSION_TTL", 24*time.Hour),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable with a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
