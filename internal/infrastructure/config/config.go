package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI string
	MongoDB  string

	// PostgreSQL (airport reference data)
	PostgresURI string

	// Scraper
	ScraperBaseURL    string
	ScraperSource     string
	ScraperUserAgent  string
	ScraperMaxPolls   int
	ScraperPollDelay  time.Duration
	ScraperComboDelay time.Duration
	ScraperTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 120)) * time.Second,

		MongoURI: getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "motia"),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		ScraperBaseURL:    getEnv("SCRAPER_BASE_URL", ""),
		ScraperSource:     getEnv("SCRAPER_SOURCE", "flightsfinder"),
		ScraperUserAgent:  getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
		ScraperMaxPolls:   getEnvAsInt("SCRAPER_MAX_POLLS", 20),
		ScraperPollDelay:  time.Duration(getEnvAsInt("SCRAPER_POLL_DELAY_MS", 1000)) * time.Millisecond,
		ScraperComboDelay: time.Duration(getEnvAsInt("SCRAPER_COMBO_DELAY_MS", 2000)) * time.Millisecond,
		ScraperTimeout:    time.Duration(getEnvAsInt("SCRAPER_TIMEOUT", 30)) * time.Second,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
