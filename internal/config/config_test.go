package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")
	t.Setenv("DB_FALLBACK_PATH", "/tmp/collection.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.DB.OpTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 8, cfg.Stats.RecentLimit)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("DB_FALLBACK_PATH", "/tmp/collection.db")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSomeStore(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_FALLBACK_PATH", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")
	t.Setenv("DB_DSN", "postgres://localhost/eco")
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STATS_RECENT_LIMIT", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "postgres://localhost/eco", cfg.DB.DSN)
	assert.Equal(t, 20, cfg.Stats.RecentLimit)
}
