// Package config loads the server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config holds the server configuration.
type Config struct {
	Port string

	DurableBackend string
	DatabasePath   string
	DatabaseURL    string

	EphemeralBackend string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	JWTSecret    string
	CookieSecure bool

	PasswordHasher string
	BcryptCost     int

	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	DemoMode      bool

	PaymentLatency time.Duration
	AdminToken     string

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel slog.Level
}

var defaults = map[string]any{
	"PORT":              "8080",
	"DURABLE_BACKEND":   BackendSQLite,
	"DATABASE_PATH":     "bloomy.db",
	"DATABASE_URL":      "",
	"EPHEMERAL_BACKEND": BackendMemory,
	"REDIS_ADDR":        "localhost:6379",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"JWT_SECRET":        "",
	"COOKIE_SECURE":     true,
	"PASSWORD_HASHER":   "argon2id",
	"BCRYPT_COST":       12,
	"SESSION_TTL":       7 * 24 * time.Hour,
	"RESET_TOKEN_TTL":   time.Hour,
	"DEMO_MODE":         false,
	"PAYMENT_LATENCY":   2 * time.Second,
	"ADMIN_TOKEN":       "",
	"RATE_LIMIT_RPS":    1.0,
	"RATE_LIMIT_BURST":  10,
	"LOG_LEVEL":         "info",
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v, applying defaults and validation.
func FromViper(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := Config{
		Port:             v.GetString("PORT"),
		DurableBackend:   strings.ToLower(strings.TrimSpace(v.GetString("DURABLE_BACKEND"))),
		DatabasePath:     v.GetString("DATABASE_PATH"),
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		EphemeralBackend: strings.ToLower(strings.TrimSpace(v.GetString("EPHEMERAL_BACKEND"))),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
		PasswordHasher:   strings.ToLower(strings.TrimSpace(v.GetString("PASSWORD_HASHER"))),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		SessionTTL:       v.GetDuration("SESSION_TTL"),
		ResetTokenTTL:    v.GetDuration("RESET_TOKEN_TTL"),
		DemoMode:         v.GetBool("DEMO_MODE"),
		PaymentLatency:   v.GetDuration("PAYMENT_LATENCY"),
		AdminToken:       strings.TrimSpace(v.GetString("ADMIN_TOKEN")),
		RateLimitRPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	switch c.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.PasswordHasher)
	}

	switch c.DurableBackend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown DURABLE_BACKEND %q", c.DurableBackend)
	}

	switch c.EphemeralBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown EPHEMERAL_BACKEND %q", c.EphemeralBackend)
	}

	if c.SessionTTL <= 0 || c.ResetTokenTTL <= 0 {
		return errors.New("SESSION_TTL and RESET_TOKEN_TTL must be positive")
	}
	if c.PaymentLatency < 0 {
		return errors.New("PAYMENT_LATENCY must not be negative")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
