package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Worker.DispatchTimeout)
	assert.Equal(t, 10*time.Second, cfg.Worker.WebhookTimeout)
	assert.False(t, cfg.Retention.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MVV_SERVER_PORT", "9090")
	t.Setenv("MVV_SERVER_LOG_LEVEL", "debug")
	t.Setenv("MVV_STORE_BACKEND", "redis")
	t.Setenv("MVV_STORE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("MVV_WORKER_INTERNAL_TOKEN", "an-actual-secret-value")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Store.RedisAddr)
	assert.Equal(t, "an-actual-secret-value", cfg.Worker.InternalToken)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid log level", "MVV_SERVER_LOG_LEVEL", "verbose"},
		{"invalid backend", "MVV_STORE_BACKEND", "dynamo"},
		{"port out of range", "MVV_SERVER_PORT", "70000"},
		{"short internal token", "MVV_WORKER_INTERNAL_TOKEN", "short"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
