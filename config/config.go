package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAdminEmail    = "admin@admin.com"
	defaultAdminPassword = "admin2025"
	defaultSessionSecret = "kycdesk-development-session-secret"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	AdminEmail    string
	AdminPassword string

	SessionSecret        string
	SessionTTL           time.Duration
	SessionBackend       string
	SessionEncryptionKey string
	CookieSecure         bool

	RedisURL      string
	RedisPassword string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "development")
	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "kycdesk.db"),
		Port:                 getEnv("PORT", "8080"),
		Environment:          env,
		AdminEmail:           getEnv("ADMIN_EMAIL", defaultAdminEmail),
		AdminPassword:        getEnv("ADMIN_PASSWORD", defaultAdminPassword),
		SessionSecret:        getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionTTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionBackend:       strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
		CookieSecure:         getEnvBool("COOKIE_SECURE", env == "production"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RateLimitRPS:         getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", 50),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate returns an error for configurations the server cannot run with,
// and a list of warnings for insecure but usable ones.
func Validate(cfg *Config) (warnings []string, err error) {
	var problems []string

	if strings.TrimSpace(cfg.AdminEmail) == "" || cfg.AdminPassword == "" {
		problems = append(problems, "ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	if len(cfg.SessionSecret) < 32 {
		problems = append(problems, fmt.Sprintf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret)))
	}
	if cfg.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	switch cfg.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		key, decodeErr := hex.DecodeString(cfg.SessionEncryptionKey)
		if decodeErr != nil || len(key) != 32 {
			problems = append(problems, "SESSION_ENCRYPTION_KEY must be 64 hex characters when SESSION_BACKEND=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, cfg.SessionBackend))
	}

	if cfg.IsProduction() {
		if cfg.AdminPassword == defaultAdminPassword {
			warnings = append(warnings, "change ADMIN_PASSWORD in production environment")
		}
		if cfg.SessionSecret == defaultSessionSecret {
			warnings = append(warnings, "change SESSION_SECRET in production environment")
		}
		if !cfg.CookieSecure {
			warnings = append(warnings, "COOKIE_SECURE is disabled in production environment")
		}
	}

	if len(problems) > 0 {
		return warnings, errors.New(strings.Join(problems, "; "))
	}
	return warnings, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
