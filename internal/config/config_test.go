package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should fall back to defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8000", cfg.Server.Port)
		assert.Equal(t, "sqlite:./blog.db", cfg.Database.URL)
		assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("Should override from BLOG_ environment variables", func(t *testing.T) {
		t.Setenv("BLOG_ENV", "production")
		t.Setenv("BLOG_SERVER_PORT", "9090")
		t.Setenv("BLOG_SERVER_SHUTDOWN_TIMEOUT", "2s")
		t.Setenv("BLOG_DATABASE_URL", "sqlite:/tmp/other.db")
		t.Setenv("BLOG_DATABASE_MAX_OPEN_CONNS", "3")
		t.Setenv("BLOG_LOG_FORMAT", "json")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Env)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "sqlite:/tmp/other.db", cfg.Database.URL)
		assert.Equal(t, 3, cfg.Database.MaxOpenConns)
		assert.Equal(t, 25, cfg.Database.MaxIdleConns)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		t.Setenv("BLOG_LOG_FORMAT", "xml")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

func TestEnvKey(t *testing.T) {
	t.Run("Should split section from field", func(t *testing.T) {
		assert.Equal(t, "database.max_open_conns", envKey("BLOG_DATABASE_MAX_OPEN_CONNS"))
		assert.Equal(t, "server.port", envKey("BLOG_SERVER_PORT"))
		assert.Equal(t, "env", envKey("BLOG_ENV"))
		assert.Equal(t, "", envKey("BLOG_"))
	})
}
