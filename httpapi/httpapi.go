package httpapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aatuh/mailgun/internal"
	"github.com/aatuh/mailgun/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 10
	defaultUserAgent    = "aatuh-mailgun/1"
)

// Config configures the HTTP transport.
type Config struct {
	// Timeout bounds a whole submission, redirects included. Zero means
	// 30 seconds.
	Timeout time.Duration
	// MaxRedirects caps followed redirects. Zero means 10, negative
	// disables redirects.
	MaxRedirects int
	UserAgent    string
	SkipVerify   bool
}

// Option customises a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the underlying client. Its Timeout and
// CheckRedirect are overridden per submission.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the logger used for submission events.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// WithFileSource sets where attachment content is read from.
func WithFileSource(src types.FileSource) Option {
	return func(t *Transport) {
		if src != nil {
			t.files = src
		}
	}
}

// Transport submits form requests over net/http and records curl-style
// statistics for every exchange.
type Transport struct {
	cfg    Config
	client *http.Client
	files  types.FileSource
	log    zerolog.Logger
}

// New creates a Transport.
//
// Parameters:
//   - cfg: The transport config.
//   - opts: Optional overrides.
//
// Returns:
//   - *Transport: The transport.
func New(cfg Config, opts ...Option) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	t := &Transport{
		cfg:   cfg,
		files: internal.NewFileSource(nil),
		log:   zerolog.Nop(),
	}
	if cfg.SkipVerify {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		t.client = &http.Client{Transport: tr}
	} else {
		t.client = &http.Client{}
	}
	for _, o := range opts {
		if o != nil {
			o(t)
		}
	}
	return t
}

// SubmitForm posts req and returns the raw outcome. It never returns an
// error directly: a failed exchange yields a Result with nil Stats, the
// error text as Body and the error in Err.
func (t *Transport) SubmitForm(ctx context.Context, req types.FormRequest) types.Result {
	log := t.log.With().Str("request_id", req.ID).Str("url", req.URL).Logger()

	body, contentType, err := internal.EncodeForm(req, t.files)
	if err != nil {
		return t.fail(log, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	tr := newTracer()
	hreq, err := http.NewRequestWithContext(
		tr.attach(ctx), http.MethodPost, req.URL, bytes.NewReader(body),
	)
	if err != nil {
		return t.fail(log, fmt.Errorf("build request: %w", err))
	}
	hreq.SetBasicAuth(req.Username, req.Password)
	hreq.Header.Set("Content-Type", contentType)
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", t.cfg.UserAgent)

	client := *t.client
	client.Timeout = 0
	client.CheckRedirect = t.checkRedirect(tr)

	tr.begin()
	resp, err := client.Do(hreq)
	if err != nil {
		return t.fail(log, fmt.Errorf("post: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.fail(log, fmt.Errorf("read response: %w", err))
	}
	tr.end()

	stats := collectStats(tr, hreq, resp, int64(len(body)), int64(len(respBody)))
	log.Debug().
		Int("status", stats.HTTPCode).
		Dur("total", stats.TotalTime).
		Int64("redirects", stats.RedirectCount).
		Msg("submission done")

	return types.Result{Body: respBody, Stats: stats}
}

func (t *Transport) checkRedirect(tr *tracer) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if t.cfg.MaxRedirects < 0 || len(via) > t.cfg.MaxRedirects {
			return http.ErrUseLastResponse
		}
		tr.redirect()
		return nil
	}
}

func (t *Transport) fail(log zerolog.Logger, err error) types.Result {
	log.Error().Err(err).Msg("submission failed")
	return types.Result{Body: []byte(err.Error()), Err: err}
}
