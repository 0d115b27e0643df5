package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv    string
	Port       string
	BaseURL    string
	JWTSecret  string
	Database   DatabaseConfig
	Generation GenerationConfig
	Payments   PaymentsConfig
	Mail       MailConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// GenerationConfig holds text-generation configuration
type GenerationConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	FreeLimit    int
	Allowlist    []string
}

// PaymentsConfig holds Stripe configuration
type PaymentsConfig struct {
	SecretKey     string
	PriceID       string
	WebhookSecret string
}

// MailConfig holds the SMTP relay settings for the contact form
type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	To       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	freeLimit := 3
	if v := os.Getenv("FREE_GENERATION_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FREE_GENERATION_LIMIT: %w", err)
		}
		freeLimit = n
	}

	var allowlist []string
	for _, e := range strings.Split(os.Getenv("ALLOWLISTED_EMAILS"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			allowlist = append(allowlist, e)
		}
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		BaseURL:   getEnv("BASE_URL", "http://localhost:3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "jobplans"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Generation: GenerationConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			FreeLimit:    freeLimit,
			Allowlist:    allowlist,
		},
		Payments: PaymentsConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			PriceID:       os.Getenv("STRIPE_SUBSCRIPTION_PRICE_ID"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			To:       getEnv("CONTACT_EMAIL", "support@pivot2ai.com"),
		},
	}, nil
}

// Allowlisted reports whether email bypasses the generation quota.
func (c *Config) Allowlisted(email string) bool {
	for _, e := range c.Generation.Allowlist {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
