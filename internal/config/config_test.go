package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/examprep/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                  ":8080",
		DBPath:                "test.db",
		LogLevel:              "INFO",
		NewCardsPerSession:    20,
		MaxCardsPerSession:    200,
		ReviewWorkerCount:     2,
		ReviewQueueSize:       128,
		RequestTimeoutSeconds: 30,
		RateLimitRPS:          10,
		RateLimitBurst:        20,
		SessionIdleMinutes:    1440,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_UnlimitedSessionSize(t *testing.T) {
	cfg := validConfig()
	cfg.MaxCardsPerSession = 0
	cfg.NewCardsPerSession = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_SingleField(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "ADDR cannot be empty"},
		{"empty db path", func(c *config.Config) { c.DBPath = "" }, "DB_PATH cannot be empty"},
		{"negative new cards", func(c *config.Config) { c.NewCardsPerSession = -1 }, "NEW_CARDS_PER_SESSION"},
		{"negative max cards", func(c *config.Config) { c.MaxCardsPerSession = -5 }, "MAX_CARDS_PER_SESSION"},
		{"zero review workers", func(c *config.Config) { c.ReviewWorkerCount = 0 }, "REVIEW_WORKER_COUNT"},
		{"zero review queue", func(c *config.Config) { c.ReviewQueueSize = 0 }, "REVIEW_QUEUE_SIZE"},
		{"zero timeout", func(c *config.Config) { c.RequestTimeoutSeconds = 0 }, "REQUEST_TIMEOUT_SECONDS"},
		{"negative rate", func(c *config.Config) { c.RateLimitRPS = -1 }, "RATE_LIMIT_RPS"},
		{"zero burst", func(c *config.Config) { c.RateLimitBurst = 0 }, "RATE_LIMIT_BURST"},
		{"zero session idle", func(c *config.Config) { c.SessionIdleMinutes = 0 }, "SESSION_IDLE_MINUTES"},
		{"invalid log level", func(c *config.Config) { c.LogLevel = "INVALID" }, "LOG_LEVEL"},
		{"empty log level", func(c *config.Config) { c.LogLevel = "" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitRPS = 0
	cfg.RateLimitBurst = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR", "debug"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{LogLevel: "INVALID"}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "REVIEW_WORKER_COUNT")
	assert.Contains(t, errStr, "REVIEW_QUEUE_SIZE")
	assert.Contains(t, errStr, "REQUEST_TIMEOUT_SECONDS")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("NEW_CARDS_PER_SESSION", "5")
	t.Setenv("MAX_CARDS_PER_SESSION", "not-a-number")
	t.Setenv("SESSION_IDLE_MINUTES", "90")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.NewCardsPerSession)
	assert.Equal(t, 200, cfg.MaxCardsPerSession, "invalid int falls back to default")
	assert.Equal(t, 90, cfg.SessionIdleMinutes)
}
