package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("OUTBOX_RELAY_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.OutboxRelayInterval)
	assert.Equal(t, 30*time.Second, cfg.AccountSearchCacheTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com ,")
	t.Setenv("ACCOUNT_SEARCH_CACHE_TTL", "1m")
	t.Setenv("NOTIFICATION_WORKER_ENABLED", "false")
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("CONVERSION_NOTIFY_EMAIL", "team@example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, 40, cfg.DBMaxOpenConns)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Minute, cfg.AccountSearchCacheTTL)
	assert.False(t, cfg.NotificationWorkerEnabled)
	assert.True(t, cfg.MailEnabled())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("OUTBOX_RELAY_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.OutboxRelayInterval)
}
