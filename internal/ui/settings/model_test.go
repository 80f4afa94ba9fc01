package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/config"
	"github.com/nhle/dayboard/internal/keys"
)

func TestApply(t *testing.T) {
	fb := formBindings{
		baseURL:      " https://api.example.com/ ",
		timeout:      "10",
		pollInterval: "45",
		limit:        "5",
		onFailure:    config.FailureReset,
		logLevel:     "debug",
	}

	got, err := fb.apply(*config.Default())
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/", got.API.BaseURL)
	assert.Equal(t, 10, got.API.TimeoutSec)
	assert.Equal(t, 45, got.Notifications.PollIntervalSec)
	assert.Equal(t, 5, got.Notifications.Limit)
	assert.Equal(t, config.FailureReset, got.Notifications.OnFailure)
	assert.Equal(t, "debug", got.Log.Level)

	fb.limit = "lots"
	_, err = fb.apply(*config.Default())
	assert.EqualError(t, err, "notification limit must be a number")

	fb.limit = "0"
	_, err = fb.apply(*config.Default())
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://localhost:8080"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("localhost:8080/api"))

	assert.NoError(t, validatePositive("Limit")("3"))
	assert.EqualError(t, validatePositive("Limit")("0"), "Limit must be positive")
	assert.EqualError(t, validatePositive("Limit")("x"), "Limit must be a number")
}

func TestValidateAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	var probed string
	probe := func(_ context.Context, baseURL string) error {
		probed = baseURL
		return nil
	}

	m := New(config.Default(), path, probe, keys.DefaultKeyMap(), 80, 24)
	m.Start()
	m.fb.baseURL = "http://backend:9000/"

	msg := m.validateAndSave()().(resultMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "http://backend:9000/", probed)
	assert.Equal(t, "http://backend:9000/", msg.cfg.API.BaseURL)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/", loaded.API.BaseURL)
}

func TestValidateAndSaveUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	probe := func(context.Context, string) error { return errors.New("connection refused") }

	m := New(config.Default(), path, probe, keys.DefaultKeyMap(), 80, 24)
	m.Start()

	msg := m.validateAndSave()().(resultMsg)
	assert.EqualError(t, msg.err, "backend not reachable: connection refused")
	assert.NoFileExists(t, path)
}
