package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// Config holds all configuration for the SKU reconciliation service
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Cache
	RedisURL    string
	RunCacheTTL time.Duration

	// Matching
	MatchWorkers        int
	MaxConcurrentRuns   int
	RunTimeout          time.Duration
	MatchingProfilePath string

	// Uploads
	UploadMaxBytes int64

	// Rate Limiting
	RateLimitRPS   float64 // requests per second per tenant
	RateLimitBurst int

	// CORS
	CORSAllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() *Config {
	// Build DATABASE_URL from components using the shared secrets helper for the password
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := secrets.GetDBPassword()
		dbName := getEnv("DB_NAME", "tesseract_hub")
		dbSSLMode := getEnv("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
	}

	config := &Config{
		Port:        getEnv("PORT", "8099"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RunCacheTTL: getEnvAsDuration("RUN_CACHE_TTL", 30*time.Minute),

		MatchWorkers:        getEnvAsInt("MATCH_WORKERS", 0),
		MaxConcurrentRuns:   getEnvAsInt("MAX_CONCURRENT_RUNS", 2),
		RunTimeout:          getEnvAsDuration("RUN_TIMEOUT", 30*time.Minute),
		MatchingProfilePath: getEnv("MATCHING_PROFILE", ""),

		UploadMaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 32<<20)),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{
			"https://*.tesserix.app",
			"http://localhost:3000",
			"http://localhost:3001",
		}),
	}

	// Validate required fields
	if config.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if config.MaxConcurrentRuns <= 0 {
		log.Println("Warning: MAX_CONCURRENT_RUNS must be positive, using 1")
		config.MaxConcurrentRuns = 1
	}

	return config
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvAsList splits a comma-separated variable
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
