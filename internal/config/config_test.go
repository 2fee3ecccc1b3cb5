package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/sku?sslmode=disable")
	t.Setenv("MATCH_WORKERS", "12")
	t.Setenv("RUN_TIMEOUT", "5m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAX_CONCURRENT_RUNS", "-1")

	cfg := Load()
	assert.Equal(t, "postgres://u:p@db:5432/sku?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 12, cfg.MatchWorkers)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 1, cfg.MaxConcurrentRuns)
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("SKU_TEST_INT", "abc")
	t.Setenv("SKU_TEST_DURATION", "soon")
	assert.Equal(t, 7, getEnvAsInt("SKU_TEST_INT", 7))
	assert.Equal(t, time.Second, getEnvAsDuration("SKU_TEST_DURATION", time.Second))
	assert.Equal(t, "dflt", getEnv("SKU_TEST_UNSET", "dflt"))
}
