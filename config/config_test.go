package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "cook")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "cookbook")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBPools.AppPool.Host)
	assert.Equal(t, 5432, cfg.DBPools.AppPool.Port)
	assert.Equal(t, 10, cfg.DBPools.AppPool.MaxSize)
	assert.Equal(t, 5, cfg.DBPools.ImportPool.MaxSize)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, "session", cfg.Auth.SessionCookieName)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.False(t, cfg.Auth.Google.Enabled())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Empty(t, cfg.Storage.Bucket)
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := LoadConfig()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET", "DB_PORT", "LOG_LEVEL"} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BASE_URL", "https://api.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("GOOGLE_CLIENT_ID", "gid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "gsecret")
	t.Setenv("GITHUB_CLIENT_ID", "only-id")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Server.BaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Auth.Google.Enabled())
	assert.False(t, cfg.Auth.GitHub.Enabled())
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoadConfigRejectsShortSecretAndBadPools(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_APP_POOL_SIZE", "500")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
	assert.Contains(t, err.Error(), "greater than maximum 100")
}

func TestLoadConfigTokenDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "48h")
	t.Setenv("JWT_REFRESH_TOKEN_DURATION", "1h")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed")
}
