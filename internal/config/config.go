// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns
// an error and the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config holds all runtime configuration for the aggregator service.
type Config struct {
	Port           string
	GRPCPort       string // empty disables the gRPC health endpoint
	RedisURL       string
	DatabaseURL    string // empty disables the archive and standing searches
	RequestQueue   string
	LogChannel     string
	LogLevel       string
	LogDevelopment bool

	UserAgent          string
	FetchTimeout       time.Duration
	FetchRatePerSecond float64
	RequestTimeout     time.Duration
	ReplyTTL           time.Duration
	FanoutConcurrency  int
	IsolateFailures    bool
	StandingRefresh    string // cron spec
}

// Load reads a .env file when present, then the environment, and returns a
// validated Config. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	cfg := &Config{
		Port:            getenv("AGGREGATOR_PORT", "8083"),
		GRPCPort:        os.Getenv("GRPC_PORT"),
		RedisURL:        redisURL,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RequestQueue:    getenv("REQUEST_QUEUE", "scratchjobs_queue"),
		LogChannel:      getenv("LOG_CHANNEL", "scratchjobs_log"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		UserAgent:       getenv("USER_AGENT", defaultUserAgent),
		StandingRefresh: getenv("STANDING_SEARCH_REFRESH", "@every 15m"),
	}

	var err error
	if cfg.LogDevelopment, err = parseBool("LOG_DEVELOPMENT", false); err != nil {
		return nil, err
	}
	if cfg.IsolateFailures, err = parseBool("ISOLATE_SITE_FAILURES", false); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = parseDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReplyTTL, err = parseDuration("REPLY_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	cfg.FanoutConcurrency = 1
	if s := os.Getenv("FANOUT_CONCURRENCY"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("FANOUT_CONCURRENCY must be a positive integer, got %q", s)
		}
		cfg.FanoutConcurrency = v
	}

	if s := os.Getenv("FETCH_RATE_PER_SECOND"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("FETCH_RATE_PER_SECOND must be a non-negative number, got %q", s)
		}
		cfg.FetchRatePerSecond = v
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, s)
	}
	return v, nil
}
