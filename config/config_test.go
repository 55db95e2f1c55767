package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "AUTO_MIGRATE", "REDIS_URL", "REDIS_DB", "TOKEN_TTL_HOURS", "LOG_LEVEL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 168, cfg.TokenTTLHours)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 0.2, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, 3, cfg.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("TOKEN_TTL_HOURS", "24")
	t.Setenv("LOG_DEV", "1")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 4, cfg.RedisDB)
	assert.Equal(t, 24, cfg.TokenTTLHours)
	assert.True(t, cfg.LogDev)
	assert.Equal(t, 10, cfg.RateLimitBurst)
}
