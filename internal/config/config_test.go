package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.API, cfg.API)
	assert.Equal(t, d.Notifications, cfg.Notifications)
	assert.Equal(t, d.Session, cfg.Session)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "api:\n  base_url: http://file:8080/\n  timeout_sec: 12\nnotifications:\n  limit: 7\n  on_failure: reset\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file:8080/", cfg.API.BaseURL)
	assert.Equal(t, 12, cfg.API.TimeoutSec)
	assert.Equal(t, 7, cfg.Notifications.Limit)
	assert.Equal(t, FailureReset, cfg.Notifications.OnFailure)
	assert.Equal(t, 30, cfg.Notifications.PollIntervalSec)

	t.Setenv("DAYBOARD_API_BASE_URL", "http://env:9090/")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:9090/", cfg.API.BaseURL)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notifications:\n  on_failure: panic\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "notifications.on_failure")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"base url", func(c *AppConfig) { c.API.BaseURL = " " }, "api.base_url is required"},
		{"timeout", func(c *AppConfig) { c.API.TimeoutSec = 0 }, "api.timeout_sec must be positive"},
		{"expiry", func(c *AppConfig) { c.Session.ExpiryCheckSec = -1 }, "session.expiry_check_sec must be positive"},
		{"poll", func(c *AppConfig) { c.Notifications.PollIntervalSec = 0 }, "notifications.poll_interval_sec must be positive"},
		{"limit", func(c *AppConfig) { c.Notifications.Limit = 0 }, "notifications.limit must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.EqualError(t, cfg.Validate(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.API.BaseURL = "http://saved:8080/"
	cfg.Notifications.Limit = 3
	cfg.Log.Level = "debug"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved:8080/", loaded.API.BaseURL)
	assert.Equal(t, 3, loaded.Notifications.Limit)
	assert.Equal(t, "debug", loaded.Log.Level)
}

func TestDurations(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "30s", cfg.RequestTimeout().String())
	assert.Equal(t, "1m0s", cfg.ExpiryCheckInterval().String())
	assert.Equal(t, "30s", cfg.PollInterval().String())
}
