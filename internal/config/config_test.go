package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("k", 64))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, 10*time.Minute, cfg.Auth.RestorableTTL())
	assert.Equal(t, 10*time.Minute, cfg.Auth.RecoveryWindow())
	assert.Equal(t, 500*time.Millisecond, cfg.Auth.SessionStoreTimeout())
	assert.True(t, cfg.Auth.StrictSession)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 5*time.Second, cfg.Postgres.ConnectTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("k", 64))
	t.Setenv("AUTH_RECOVERY_WINDOW_MINUTES", "1440")
	t.Setenv("AUTH_RESTORABLE_TOKEN_TTL_MINUTES", "5")
	t.Setenv("AUTH_STRICT_SESSION", "false")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Auth.RecoveryWindow())
	assert.Equal(t, 5*time.Minute, cfg.Auth.RestorableTTL())
	assert.False(t, cfg.Auth.StrictSession)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL(), "unparsable values fall back to defaults")
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("k", 64))
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	require.Error(t, err)
}
