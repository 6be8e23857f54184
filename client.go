package mailgun

import (
	"errors"
	"fmt"

	"github.com/aatuh/mailgun/config"
	"github.com/aatuh/mailgun/httpapi"
	"github.com/aatuh/mailgun/internal/logger"
)

// Client holds the domain, credentials, transport and options shared by
// the messages it creates.
type Client struct {
	domain    string
	apiKey    string
	transport Transport
	settings  Settings
}

// NewClient creates a client.
//
// Parameters:
//   - domain: The sending domain.
//   - apiKey: The API key.
//   - transport: The transport used by every message.
//   - opts: Optional settings.
//
// Returns:
//   - *Client: The client.
func NewClient(
	domain string,
	apiKey string,
	transport Transport,
	opts ...Option,
) *Client {
	return &Client{
		domain:    domain,
		apiKey:    apiKey,
		transport: transport,
		settings:  applyOptions(opts),
	}
}

// NewClientFromConfig builds a client with an HTTP transport, logger and
// API root taken from cfg. opts are applied after the config.
func NewClientFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("NewClientFromConfig: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewClientFromConfig: %w", err)
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("NewClientFromConfig: logger: %w", err)
	}

	base := []Option{WithAPIRoot(cfg.Mailgun.BaseURL()), WithLogger(*log)}
	settings := applyOptions(append(base, opts...))

	transport := httpapi.New(
		httpapi.Config{Timeout: cfg.Mailgun.Timeout},
		httpapi.WithLogger(settings.Logger),
		httpapi.WithFileSource(settings.Files),
	)
	return &Client{
		domain:    cfg.Mailgun.Domain,
		apiKey:    cfg.Mailgun.APIKey,
		transport: transport,
		settings:  settings,
	}, nil
}

// Domain returns the sending domain.
func (c *Client) Domain() string { return c.domain }

// NewMessage creates an empty message bound to the client.
func (c *Client) NewMessage() *Message {
	return newMessage(c.domain, c.apiKey, c.transport, c.settings)
}
