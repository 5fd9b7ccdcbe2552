package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StorageBackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, CacheProviderRedis, cfg.Cache.Provider)
	assert.Equal(t, 150*time.Millisecond, cfg.Cache.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 6, cfg.Shortener.SlugLength)
	assert.Equal(t, 5, cfg.Shortener.MaxRetries)
	assert.Equal(t, 2, cfg.Shortener.GrowthEvery)
	assert.Equal(t, 301, cfg.Shortener.RedirectStatus)
	assert.False(t, cfg.Tracking.Outbox)
	assert.Equal(t, 10, cfg.Postgres.MaxConns)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, 1.0, cfg.OTel.SampleRatio)
}

func TestFromEnv_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example, https://admin.example")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, cfg.Server.CORSOrigins)
}

func TestFromEnv_BaseURLFallback(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_BASE_URL", "https://legacy.example")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://legacy.example", cfg.Shortener.BaseURL)

	t.Setenv("SHORTENER_BASE_URL", "https://sho.rt")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://sho.rt", cfg.Shortener.BaseURL)
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_BACKEND", "sqlite"},
		{"CACHE_PROVIDER", "memcached"},
		{"REDIRECT_STATUS", "307"},
		{"SLUG_LENGTH", "2"},
		{"SLUG_LENGTH", "31"},
		{"SLUG_MAX_RETRIES", "0"},
		{"SLUG_GROWTH_EVERY", "0"},
		{"TRACKING_WORKERS", "0"},
		{"TRACKING_QUEUE_SIZE", "-1"},
		{"DB_MAX_CONNS", "0"},
		{"DB_MIN_CONNS", "20"},
		{"OTEL_SAMPLE_RATIO", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_OutboxNeedsPostgres(t *testing.T) {
	t.Setenv("OUTBOX_ENABLED", "true")
	t.Setenv("STORAGE_BACKEND", "memory")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("STORAGE_BACKEND", "postgres")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Tracking.Outbox)
}
