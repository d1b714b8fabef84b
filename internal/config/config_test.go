package config

import (
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "tables",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "restaurant",
		"JWT_SECRET":             "secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "10",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("RESTAURANT_TIMEZONE", "America/New_York")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_MIGRATE", "yes")
	t.Setenv("RABBITMQ_URL", "amqp://broker/")
	t.Setenv("MANAGER_EMAIL", "boss@example.com")
	t.Setenv("MANAGER_PASSWORD", "change-me-now")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.True(t, cfg.DBMigrate)
	assert.Equal(t, log.DEBUG, cfg.LogLevel)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	assert.Equal(t, "amqp://broker/", cfg.AMQPURL)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, "logs", cfg.EventLogDir)
	assert.Equal(t, "boss@example.com", cfg.ManagerEmail)
	assert.Equal(t, "change-me-now", cfg.ManagerPass)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, log.INFO, cfg.LogLevel)
	assert.False(t, cfg.DBMigrate)
	assert.Empty(t, cfg.ManagerEmail)
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "tables:cache:gen", cfg.GenerationKey())
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	assert.Equal(t, "cache:6379", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	assert.Equal(t, "redis:6380", LoadRedisConfig().Addr)
}
