package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MAILGUN_DOMAIN", "mg.example.com")
	t.Setenv("MAILGUN_API_KEY", "key-123")
	t.Setenv("MAILGUN_API_ROOT", "")
	t.Setenv("MAILGUN_REGION", "")
	t.Setenv("MAILGUN_TIMEOUT_SECONDS", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "mg.example.com", cfg.Mailgun.Domain)
	assert.Equal(t, "key-123", cfg.Mailgun.APIKey)
	assert.Equal(t, "us", cfg.Mailgun.Region)
	assert.Equal(t, 30*time.Second, cfg.Mailgun.Timeout)
	assert.Equal(t, RootUS, cfg.Mailgun.BaseURL())
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAILGUN_REGION", "EU")
	t.Setenv("MAILGUN_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "eu", cfg.Mailgun.Region)
	assert.Equal(t, RootEU, cfg.Mailgun.BaseURL())
	assert.Equal(t, 5*time.Second, cfg.Mailgun.Timeout)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "production", cfg.App.Env)
}

func TestLoadAPIRootWins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAILGUN_REGION", "eu")
	t.Setenv("MAILGUN_API_ROOT", "http://localhost:8025/v3/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8025/v3", cfg.Mailgun.BaseURL())
}

func TestLoadMissingRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAILGUN_DOMAIN", "")
	t.Setenv("MAILGUN_API_KEY", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAILGUN_DOMAIN is required")
	assert.Contains(t, err.Error(), "MAILGUN_API_KEY is required")
}

func TestLoadInvalidValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAILGUN_TIMEOUT_SECONDS", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAILGUN_TIMEOUT_SECONDS must be a valid integer")

	setBaseEnv(t)
	t.Setenv("MAILGUN_REGION", "apac")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Region")
}

func TestValidateStruct(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Env: "test", LogLevel: "loud"},
		Mailgun: MailgunConfig{
			Domain:  "example.com",
			APIKey:  "k",
			APIRoot: "not a url",
			Region:  "us",
			Timeout: time.Second,
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "APIRoot")

	cfg.App.LogLevel = "warn"
	cfg.Mailgun.APIRoot = ""
	require.NoError(t, cfg.Validate())

	cfg.Mailgun.Region = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, RootUS, cfg.Mailgun.BaseURL())
}
