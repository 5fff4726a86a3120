package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
)

var keys = []string{
	"SERVER_HOST", "PORT", "SERVER_TIMEOUT",
	"DB_PATH", "DB_FALLBACK_PATHS", "DB_DISABLE_FALLBACKS", "DB_CONN_TIMEOUT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY_PREFIX",
	"ADMIN_USERNAME", "ADMIN_PASSWORD",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_API_URL", "TELEGRAM_TIMEOUT",
	"GEMINI_API_KEY", "GEMINI_MODEL",
	"CONSOLIDATE_ENABLED", "CONSOLIDATE_SCHEDULE",
	"LOG_PATH", "HTTP_LOG_PATH", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		}
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.ServerAddress())
	assert.Equal(t, "emails.db", cfg.DB.Path)
	assert.Equal(t, 5*time.Second, cfg.DB.ConnTimeout)
	assert.False(t, cfg.DB.DisableFallbacks)
	assert.Empty(t, cfg.DB.FallbackPaths)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin", cfg.Admin.Password)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
	assert.Equal(t, "gemini-1.5-flash", cfg.Agent.GeminiModel)
	assert.True(t, cfg.Consolidation.Enabled)
	assert.Equal(t, "@every 10m", cfg.Consolidation.Schedule)
	assert.Equal(t, "vibe:subscribers", cfg.Redis.KeyPrefix)
}

func TestNewConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/var/lib/vibe/emails.db")
	t.Setenv("DB_FALLBACK_PATHS", "/tmp/a.db,/tmp/b.db")
	t.Setenv("DB_DISABLE_FALLBACKS", "true")
	t.Setenv("DB_CONN_TIMEOUT", "250ms")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/var/lib/vibe/emails.db", cfg.DB.Path)
	assert.Equal(t, []string{"/tmp/a.db", "/tmp/b.db"}, cfg.DB.FallbackPaths)
	assert.True(t, cfg.DB.DisableFallbacks)
	assert.Equal(t, 250*time.Millisecond, cfg.DB.ConnTimeout)
	assert.Equal(t, "s3cret", cfg.Admin.Password)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Setenv("DB_CONN_TIMEOUT", "soon")

	_, err := config.NewConfig()
	assert.Error(t, err)
}
