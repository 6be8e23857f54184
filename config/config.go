package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Region API roots.
const (
	RootUS = "https://api.mailgun.net/v3"
	RootEU = "https://api.eu.mailgun.net/v3"
)

// Config holds everything needed to talk to the Mailgun messages API.
type Config struct {
	App     AppConfig
	Mailgun MailgunConfig
}

// AppConfig contains process level settings.
type AppConfig struct {
	Env      string `validate:"required"`
	LogLevel string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
}

// MailgunConfig contains the sending domain, credentials and transport
// settings.
type MailgunConfig struct {
	Domain  string        `validate:"required,hostname_rfc1123"`
	APIKey  string        `validate:"required"`
	APIRoot string        `validate:"omitempty,url"`
	Region  string        `validate:"omitempty,oneof=us eu"`
	Timeout time.Duration `validate:"gt=0"`
}

// BaseURL returns the configured API root, or the region default.
func (c MailgunConfig) BaseURL() string {
	if c.APIRoot != "" {
		return strings.TrimRight(c.APIRoot, "/")
	}
	if c.Region == "eu" {
		return RootEU
	}
	return RootUS
}

// Load reads a .env file if present, then the environment, applies
// defaults and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = strings.ToLower(ldr.getString("LOG_LEVEL", "info", false))

	cfg.Mailgun.Domain = ldr.getString("MAILGUN_DOMAIN", "", true)
	cfg.Mailgun.APIKey = ldr.getString("MAILGUN_API_KEY", "", true)
	cfg.Mailgun.APIRoot = ldr.getString("MAILGUN_API_ROOT", "", false)
	cfg.Mailgun.Region = strings.ToLower(ldr.getString("MAILGUN_REGION", "us", false))
	cfg.Mailgun.Timeout = time.Duration(
		ldr.getInt("MAILGUN_TIMEOUT_SECONDS", 30, false),
	) * time.Second

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct constraints of c.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		if val = strings.TrimSpace(val); val != "" {
			return val
		}
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
