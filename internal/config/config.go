package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the gateway configuration, loaded from environment variables.
type Config struct {
	Port     int
	LogLevel string
	Env      string

	Upstream UpstreamConfig
	Breaker  BreakerConfig
	Limits   LimitConfig

	// AllowedOrigins for the browser dashboard, comma-separated in env.
	AllowedOrigins []string
}

// UpstreamConfig describes the restaurant backend the gateway fronts.
type UpstreamConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxAttempts    int // read retries; mutations are never retried
}

// BreakerConfig tunes the circuit breaker guarding the upstream.
type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	HalfOpenMaxCalls int
}

// LimitConfig tunes request rate limiting on the gateway surface.
type LimitConfig struct {
	GlobalCapacity float64
	GlobalRate     float64
	ClientCapacity float64
	ClientRate     float64
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	timeoutSec, err := getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	attempts, err := getEnvInt("UPSTREAM_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	threshold, err := getEnvInt("BREAKER_FAILURE_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}
	resetSec, err := getEnvInt("BREAKER_RESET_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	halfOpen, err := getEnvInt("BREAKER_HALF_OPEN_CALLS", 2)
	if err != nil {
		return nil, err
	}
	globalCap, err := getEnvFloat("RATE_GLOBAL_CAPACITY", 200)
	if err != nil {
		return nil, err
	}
	globalRate, err := getEnvFloat("RATE_GLOBAL_PER_SECOND", 100)
	if err != nil {
		return nil, err
	}
	clientCap, err := getEnvFloat("RATE_CLIENT_CAPACITY", 40)
	if err != nil {
		return nil, err
	}
	clientRate, err := getEnvFloat("RATE_CLIENT_PER_SECOND", 20)
	if err != nil {
		return nil, err
	}

	var origins []string
	for _, o := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("UPSTREAM_BASE_URL", "http://localhost:5000"),
			RequestTimeout: time.Duration(timeoutSec) * time.Second,
			MaxAttempts:    attempts,
		},
		Breaker: BreakerConfig{
			FailureThreshold: threshold,
			ResetTimeout:     time.Duration(resetSec) * time.Second,
			HalfOpenMaxCalls: halfOpen,
		},
		Limits: LimitConfig{
			GlobalCapacity: globalCap,
			GlobalRate:     globalRate,
			ClientCapacity: clientCap,
			ClientRate:     clientRate,
		},
		AllowedOrigins: origins,
	}, nil
}
