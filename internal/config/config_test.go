package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournament")
	t.Setenv("API_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("ARCHIVE_BUCKET", "")
	t.Setenv("SNAPSHOT_INTERVAL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.APIPort)
	assert.Equal(t, 30*time.Minute, cfg.DBPoolMaxLife)
	assert.True(t, cfg.CacheEnabled)
	assert.False(t, cfg.ArchiveEnabled())
	assert.Zero(t, cfg.SnapshotInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournament")
	t.Setenv("API_PORT", "9090")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("ARCHIVE_BUCKET", "snapshots")
	t.Setenv("SNAPSHOT_INTERVAL_MINUTES", "15")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.CacheEnabled)
	assert.True(t, cfg.ArchiveEnabled())
	assert.Equal(t, 15*time.Minute, cfg.SnapshotInterval)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournament")
	t.Setenv("API_PORT", "70000")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvertedPoolBounds(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournament")
	t.Setenv("API_PORT", "")
	t.Setenv("DB_POOL_MIN_CONNS", "8")
	t.Setenv("DB_POOL_MAX_CONNS", "2")
	_, err := Load()
	assert.Error(t, err)
}
