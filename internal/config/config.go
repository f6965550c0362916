package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/validator"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string `validate:"required,numeric"`
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string `validate:"oneof=debug info warn error"`
	}

	Data struct {
		PollutantFile string `validate:"required"`
		MobilityFile  string `validate:"required"`
		WatchFiles    bool
		WatchDebounce time.Duration `validate:"gte=0"`
	}

	Scheduler struct {
		// ReloadSchedule is a cron expression; empty disables scheduled reloads.
		ReloadSchedule string
	}

	OpenAQ struct {
		BaseURL      string        `validate:"required,url"`
		Limit        int           `validate:"gt=0"`
		RequestDelay time.Duration `validate:"gte=0"`
		Timeout      time.Duration `validate:"gt=0"`
	}

	CircuitBreaker struct {
		Threshold int `validate:"gt=0"`
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries    int `validate:"gte=0"`
		Delay         time.Duration
		MaxDelay      time.Duration
		RateLimitWait time.Duration
		Multiplier    float64 `validate:"gte=1"`
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "30s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Input files
	cfg.Data.PollutantFile = getEnv("POLLUTANT_DATA_FILE", "data/data_all.json")
	cfg.Data.MobilityFile = getEnv("MOBILITY_DATA_FILE", "data/2020_US_Region_Mobility_Report.csv")
	cfg.Data.WatchFiles = parseBool(getEnv("WATCH_DATA_FILES", "true"))
	cfg.Data.WatchDebounce = parseDuration(getEnv("WATCH_DEBOUNCE", "2s"))

	// Scheduler configuration
	cfg.Scheduler.ReloadSchedule = getEnv("RELOAD_SCHEDULE", "")

	// OpenAQ configuration
	cfg.OpenAQ.BaseURL = getEnv("OPENAQ_URL", "https://api.openaq.org/v2")
	cfg.OpenAQ.Limit = parseInt(getEnv("OPENAQ_LIMIT", "10000"))
	cfg.OpenAQ.RequestDelay = parseDuration(getEnv("OPENAQ_REQUEST_DELAY", "1s"))
	cfg.OpenAQ.Timeout = parseDuration(getEnv("OPENAQ_TIMEOUT", "60s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "5"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.MaxDelay = parseDuration(getEnv("RETRY_MAX_DELAY", "2m"))
	cfg.Retry.RateLimitWait = parseDuration(getEnv("RATE_LIMIT_WAIT", "30s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Retry.MaxDelay > 0 && c.Retry.Delay > c.Retry.MaxDelay {
		return fmt.Errorf("invalid config: RETRY_DELAY %s exceeds RETRY_MAX_DELAY %s", c.Retry.Delay, c.Retry.MaxDelay)
	}
	if c.Scheduler.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.Scheduler.ReloadSchedule); err != nil {
			return fmt.Errorf("invalid config: RELOAD_SCHEDULE %q: %w", c.Scheduler.ReloadSchedule, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

func parseBool(value string) bool {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return boolValue
}
