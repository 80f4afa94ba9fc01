// Package config loads the dayboard YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. DAYBOARD_API_BASE_URL.
const envPrefix = "DAYBOARD"

// Notification failure policies.
const (
	FailureKeep  = "keep"
	FailureReset = "reset"
)

// APIConfig holds settings for the REST backend.
type APIConfig struct {
	// BaseURL is the root of the REST API (e.g. http://localhost:8080/).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRequestsPerSec throttles outgoing requests; 0 disables throttling.
	MaxRequestsPerSec float64 `mapstructure:"max_requests_per_sec" yaml:"max_requests_per_sec"`
}

// SessionConfig controls token expiry checking.
type SessionConfig struct {
	ExpiryCheckSec int `mapstructure:"expiry_check_sec" yaml:"expiry_check_sec"`
}

// NotificationsConfig controls the notification poller.
type NotificationsConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// Limit caps how many of the most recent notifications are kept.
	Limit int `mapstructure:"limit" yaml:"limit"`

	// OnFailure is "keep" (retain last good list) or "reset" (clear it).
	OnFailure string `mapstructure:"on_failure" yaml:"on_failure"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
	File     string `mapstructure:"file" yaml:"file"`
}

// CacheConfig locates the local snapshot cache.
type CacheConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// CredentialsConfig configures the token store.
type CredentialsConfig struct {
	// Dir is used by the encrypted file keyring backend.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig           `mapstructure:"api" yaml:"api"`
	Session       SessionConfig       `mapstructure:"session" yaml:"session"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	Credentials   CredentialsConfig   `mapstructure:"credentials" yaml:"credentials"`
}

// RequestTimeout returns the per-request timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// ExpiryCheckInterval returns how often the session checks token expiry.
func (c *AppConfig) ExpiryCheckInterval() time.Duration {
	return time.Duration(c.Session.ExpiryCheckSec) * time.Second
}

// PollInterval returns the notification polling period.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Notifications.PollIntervalSec) * time.Second
}

// Dir returns the dayboard configuration directory, ~/.config/dayboard.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dayboard")
}

// DefaultPath returns the default path for the configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns a configuration pointing at a local backend.
func Default() *AppConfig {
	dir := Dir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080/",
			TimeoutSec: 30,
		},
		Session: SessionConfig{ExpiryCheckSec: 60},
		Notifications: NotificationsConfig{
			PollIntervalSec: 30,
			Limit:           20,
			OnFailure:       FailureKeep,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
			File:     filepath.Join(dir, "dayboard.log"),
		},
		Cache:       CacheConfig{Path: filepath.Join(dir, "cache.db")},
		Credentials: CredentialsConfig{Dir: filepath.Join(dir, "credentials")},
	}
}

// setDefaults mirrors Default so missing keys resolve to sensible values.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_requests_per_sec", d.API.MaxRequestsPerSec)
	v.SetDefault("session.expiry_check_sec", d.Session.ExpiryCheckSec)
	v.SetDefault("notifications.poll_interval_sec", d.Notifications.PollIntervalSec)
	v.SetDefault("notifications.limit", d.Notifications.Limit)
	v.SetDefault("notifications.on_failure", d.Notifications.OnFailure)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("credentials.dir", d.Credentials.Dir)
}

// Load reads configuration from the YAML file at path. A .env file in the
// working directory is loaded first, and DAYBOARD_* environment variables
// override file values. A missing file yields defaults plus overrides.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.TimeoutSec <= 0 {
		return errors.New("api.timeout_sec must be positive")
	}
	if c.Session.ExpiryCheckSec <= 0 {
		return errors.New("session.expiry_check_sec must be positive")
	}
	if c.Notifications.PollIntervalSec <= 0 {
		return errors.New("notifications.poll_interval_sec must be positive")
	}
	if c.Notifications.Limit <= 0 {
		return errors.New("notifications.limit must be positive")
	}
	switch c.Notifications.OnFailure {
	case FailureKeep, FailureReset:
	default:
		return fmt.Errorf("notifications.on_failure must be %q or %q", FailureKeep, FailureReset)
	}
	return nil
}

// Save writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("session", cfg.Session)
	v.Set("notifications", cfg.Notifications)
	v.Set("log", cfg.Log)
	v.Set("cache", cfg.Cache)
	v.Set("credentials", cfg.Credentials)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
