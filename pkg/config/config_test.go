package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// Check defaults
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 1800*time.Second, cfg.Nasdaq.CookieTTL)
	assert.Equal(t, 60*time.Second, cfg.Nasdaq.MintTimeout)
	assert.Equal(t, "https://api.nasdaq.com/api", cfg.Nasdaq.APIBaseURL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 4, cfg.Database.MaxConns)
	assert.Nil(t, cfg.Nasdaq.EmptyMarkers)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("NASDAQ_COOKIE_TTL_SECONDS", "600")
	t.Setenv("NASDAQ_API_BASE_URL", "http://localhost:9999/api/")
	t.Setenv("NASDAQ_RATE_LIMIT", "2.5")
	t.Setenv("NASDAQ_DATE_LAYOUTS", "2006-01-02 | Jan 2, 2006")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 10*time.Minute, cfg.Nasdaq.CookieTTL)
	assert.Equal(t, "http://localhost:9999/api", cfg.Nasdaq.APIBaseURL)
	assert.Equal(t, 2.5, cfg.Nasdaq.RateLimit)
	assert.Equal(t, []string{"2006-01-02", "Jan 2, 2006"}, cfg.Nasdaq.DateLayouts)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateNonPositiveTTL(t *testing.T) {
	t.Setenv("NASDAQ_COOKIE_TTL_SECONDS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateNegativeRateLimit(t *testing.T) {
	t.Setenv("NASDAQ_RATE_LIMIT", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidatePoolBounds(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "3")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "not-a-duration")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))

	t.Setenv("TEST_INT", "abc")
	assert.Equal(t, 50, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}

func TestGetEnvAsList(t *testing.T) {
	assert.Equal(t, []string{"x"}, getEnvAsList("TEST_LIST_UNSET", []string{"x"}))

	t.Setenv("TEST_LIST", "N/A|--| NM ")
	assert.Equal(t, []string{"N/A", "--", "NM"}, getEnvAsList("TEST_LIST", nil))
}
