package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("ADMIN_SECRET", "admin-secret")
	t.Setenv("CRON_SECRET", "cron-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.NotNil(t, cfg)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "testuser", cfg.DBUser)
	assert.Equal(t, "testdb", cfg.DBName)
	assert.Equal(t, "cache", cfg.RedisHost)
	assert.Equal(t, "admin-secret", cfg.AdminSecret)
	assert.Equal(t, "cron-secret", cfg.CronSecret)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOCK_TTL", "")
	t.Setenv("RATE_INSTAGRAM_HOURLY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.LockTTL)
	assert.Equal(t, 3, cfg.AuthFailureThreshold)
	assert.Equal(t, 3, cfg.RateCaps["instagram"].HourlyCap)
	assert.Equal(t, 25, cfg.RateCaps["instagram"].DailyCap)
	assert.Equal(t, 50, cfg.RateCaps["facebook"].DailyCap)
}

func TestLoadConfig_RateCapOverrides(t *testing.T) {
	t.Setenv("RATE_FACEBOOK_COOLDOWN", "90s")
	t.Setenv("RATE_FACEBOOK_HOURLY", "7")
	t.Setenv("RATE_INSTAGRAM_COOLDOWN", "120")
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	t.Setenv("S3_USE_SSL", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, 90*time.Second, cfg.RateCaps["facebook"].Cooldown)
	assert.Equal(t, 7, cfg.RateCaps["facebook"].HourlyCap)
	assert.Equal(t, 2*time.Minute, cfg.RateCaps["instagram"].Cooldown)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.False(t, cfg.S3UseSSL)
}

func TestLoadConfig_PublishTimeoutDefaultsInsideLock(t *testing.T) {
	t.Setenv("LOCK_TTL", "10m")
	t.Setenv("PUBLISH_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Minute, cfg.PublishTimeout)
	assert.Less(t, cfg.PublishTimeout, cfg.LockTTL)
}

func TestLoadConfig_RejectsCallsThatOutliveLock(t *testing.T) {
	cases := map[string]map[string]string{
		"timeout equals lock":   {"LOCK_TTL": "5m", "PUBLISH_TIMEOUT": "5m"},
		"timeout beyond lock":   {"LOCK_TTL": "2m", "PUBLISH_TIMEOUT": "3m"},
		"poll budget too large": {"LOCK_TTL": "5m", "POLL_MAX_ATTEMPTS": "60", "POLL_INTERVAL": "5s"},
		"slow http":             {"LOCK_TTL": "1m", "GRAPH_HTTP_TIMEOUT": "30s", "POLL_MAX_ATTEMPTS": "1", "POLL_INTERVAL": "1s"},
		"non-positive lock":     {"LOCK_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for key, value := range env {
				t.Setenv(key, value)
			}
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
