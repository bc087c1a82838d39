package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func load(t *testing.T, values map[string]any) (config.Config, error) {
	t.Helper()
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	return config.FromViper(v)
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]any{"JWT_SECRET": secret})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.BackendSQLite, cfg.DurableBackend)
	assert.Equal(t, "bloomy.db", cfg.DatabasePath)
	assert.Equal(t, config.BackendMemory, cfg.EphemeralBackend)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "argon2id", cfg.PasswordHasher)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 2*time.Second, cfg.PaymentLatency)
	assert.False(t, cfg.DemoMode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]any{
		"JWT_SECRET":        secret,
		"DURABLE_BACKEND":   "Postgres",
		"DATABASE_URL":      "postgres://bloomy@localhost/bloomy",
		"EPHEMERAL_BACKEND": "redis",
		"REDIS_DB":          "2",
		"COOKIE_SECURE":     "false",
		"SESSION_TTL":       "30m",
		"PAYMENT_LATENCY":   "0s",
		"LOG_LEVEL":         "debug",
		"RATE_LIMIT_RPS":    "0.5",
	})
	require.NoError(t, err)

	assert.Equal(t, config.BackendPostgres, cfg.DurableBackend)
	assert.Equal(t, config.BackendRedis, cfg.EphemeralBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Zero(t, cfg.PaymentLatency)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.InDelta(t, 0.5, cfg.RateLimitRPS, 1e-9)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"missing secret", map[string]any{}},
		{"short secret", map[string]any{"JWT_SECRET": "short"}},
		{"bcrypt cost too low", map[string]any{"JWT_SECRET": secret, "BCRYPT_COST": 3}},
		{"bcrypt cost too high", map[string]any{"JWT_SECRET": secret, "BCRYPT_COST": 15}},
		{"unknown hasher", map[string]any{"JWT_SECRET": secret, "PASSWORD_HASHER": "md5"}},
		{"postgres without url", map[string]any{"JWT_SECRET": secret, "DURABLE_BACKEND": "postgres"}},
		{"unknown durable backend", map[string]any{"JWT_SECRET": secret, "DURABLE_BACKEND": "mysql"}},
		{"unknown ephemeral backend", map[string]any{"JWT_SECRET": secret, "EPHEMERAL_BACKEND": "memcached"}},
		{"bad log level", map[string]any{"JWT_SECRET": secret, "LOG_LEVEL": "loud"}},
		{"zero burst", map[string]any{"JWT_SECRET": secret, "RATE_LIMIT_BURST": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.values)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
}
