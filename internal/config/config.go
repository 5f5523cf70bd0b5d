package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DBPath                string
	LogLevel              string
	NewCardsPerSession    int
	MaxCardsPerSession    int
	ReviewWorkerCount     int
	ReviewQueueSize       int
	RequestTimeoutSeconds int
	RateLimitRPS          int
	RateLimitBurst        int
	SessionIdleMinutes    int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:examprep.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		NewCardsPerSession:    envIntOr("NEW_CARDS_PER_SESSION", 20),
		MaxCardsPerSession:    envIntOr("MAX_CARDS_PER_SESSION", 200),
		ReviewWorkerCount:     envIntOr("REVIEW_WORKER_COUNT", 2),
		ReviewQueueSize:       envIntOr("REVIEW_QUEUE_SIZE", 128),
		RequestTimeoutSeconds: envIntOr("REQUEST_TIMEOUT_SECONDS", 30),
		RateLimitRPS:          envIntOr("RATE_LIMIT_RPS", 10),
		RateLimitBurst:        envIntOr("RATE_LIMIT_BURST", 20),
		SessionIdleMinutes:    envIntOr("SESSION_IDLE_MINUTES", 24*60),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if c.NewCardsPerSession < 0 {
		errs = append(errs, fmt.Errorf("NEW_CARDS_PER_SESSION must be >= 0, got %d", c.NewCardsPerSession))
	}
	if c.MaxCardsPerSession < 0 {
		errs = append(errs, fmt.Errorf("MAX_CARDS_PER_SESSION must be >= 0 (0 = unlimited), got %d", c.MaxCardsPerSession))
	}
	if c.ReviewWorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("REVIEW_WORKER_COUNT must be > 0, got %d", c.ReviewWorkerCount))
	}
	if c.ReviewQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("REVIEW_QUEUE_SIZE must be > 0, got %d", c.ReviewQueueSize))
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be > 0, got %d", c.RequestTimeoutSeconds))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be >= 0 (0 = disabled), got %d", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be > 0 when rate limiting is on, got %d", c.RateLimitBurst))
	}
	if c.SessionIdleMinutes <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_MINUTES must be > 0, got %d", c.SessionIdleMinutes))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
