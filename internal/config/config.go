package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Upstream clinic API
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Session
	SessionSecret   string
	SessionTTL      time.Duration
	SessionCookie   string
	AdminContextTTL time.Duration

	// Redis session mirror
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// HTTP surface
	CORSAllowedOrigins []string
	LoginRatePerSec    float64
	LoginRateBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:9000"),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		SessionSecret:   getEnv("SESSION_SECRET", ""),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionCookie:   getEnv("SESSION_COOKIE", "cp_session"),
		AdminContextTTL: getEnvAsDuration("ADMIN_CONTEXT_TTL", time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		LoginRatePerSec:    getEnvAsFloat("LOGIN_RATE_PER_SEC", 1),
		LoginRateBurst:     getEnvAsInt("LOGIN_RATE_BURST", 5),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable, dropping empties.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
