package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURL  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	EnrichBaseURL string
	EnrichAPIKey  string

	GeminiAPIKey string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// Per-call timeout for outbound HTTP (identity provider, enrichment).
	ExternalCallTimeout time.Duration
}

func Load() Config {

	_ = godotenv.Load()

	cfg := Config{

		AppPort: os.Getenv("APP_PORT"),

		LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		LinkedInRedirectURL:  os.Getenv("LINKEDIN_REDIRECT_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		EnrichBaseURL: os.Getenv("ENRICH_BASE_URL"),
		EnrichAPIKey:  os.Getenv("ENRICH_API_KEY"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		ExternalCallTimeout: 10 * time.Second,
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	return cfg

}
