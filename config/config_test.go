package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")

	// Load caches globally; reset so this test observes the environment.
	loaded = false
	cfg = AppConfig{}
	c := Load()

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "unit-test-secret", c.JWTSecret)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, c.AllowedOrigins)

	// Untouched fields fall back to defaults.
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, 6379, c.RedisPort)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, "release", c.GinMode)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,, "))
	assert.Empty(t, splitAndTrim(""))
}

func TestGetReturnsCachedConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")
	loaded = false
	cfg = AppConfig{}

	first := Load()
	require.True(t, loaded)
	second := Get()
	assert.Equal(t, first, second)
}
