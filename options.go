package mailgun

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/aatuh/mailgun/config"
	"github.com/aatuh/mailgun/internal"
	"github.com/aatuh/mailgun/types"
)

// DefaultAPIRoot is the US region root of the Mailgun API.
const DefaultAPIRoot = config.RootUS

// Option configures a Message or a Client.
type Option func(*Settings)

// Settings are shared by every message created with the same options.
type Settings struct {
	APIRoot string
	Logger  zerolog.Logger
	Files   types.FileSource
	Hooks   *types.Hooks
	Now     func() time.Time
}

func defaultSettings() Settings {
	return Settings{
		APIRoot: DefaultAPIRoot,
		Logger:  zerolog.Nop(),
		Files:   internal.NewFileSource(nil),
		Now:     time.Now,
	}
}

func applyOptions(opts []Option) Settings {
	s := defaultSettings()
	for _, o := range opts {
		if o != nil {
			o(&s)
		}
	}
	return s
}

// WithAPIRoot sets the API root the messages endpoint is built from.
//
// Parameters:
//   - root: The API root, e.g. "https://api.mailgun.net/v3".
//
// Returns:
//   - Option: The option.
func WithAPIRoot(root string) Option {
	return func(s *Settings) {
		if root = strings.TrimRight(root, "/"); root != "" {
			s.APIRoot = root
		}
	}
}

// WithRegion selects the API root of a region, "us" or "eu". Unknown
// regions leave the root unchanged.
//
// Parameters:
//   - region: The region.
//
// Returns:
//   - Option: The option.
func WithRegion(region string) Option {
	return func(s *Settings) {
		switch strings.ToLower(region) {
		case "us":
			s.APIRoot = config.RootUS
		case "eu":
			s.APIRoot = config.RootEU
		}
	}
}

// WithLogger sets the logger for warnings and submission events.
//
// Parameters:
//   - l: The logger.
//
// Returns:
//   - Option: The option.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Settings) { s.Logger = l }
}

// WithFileSource sets the source used to check attachment paths.
//
// Parameters:
//   - src: The file source.
//
// Returns:
//   - Option: The option.
func WithFileSource(src types.FileSource) Option {
	return func(s *Settings) {
		if src != nil {
			s.Files = src
		}
	}
}

// WithFS checks attachment paths against fs.
//
// Parameters:
//   - fs: The filesystem.
//
// Returns:
//   - Option: The option.
func WithFS(fs afero.Fs) Option {
	return func(s *Settings) { s.Files = internal.NewFileSource(fs) }
}

// WithHooks attaches submission hooks.
//
// Parameters:
//   - h: The hooks.
//
// Returns:
//   - Option: The option.
func WithHooks(h *types.Hooks) Option {
	return func(s *Settings) { s.Hooks = h }
}

// WithClock replaces time.Now for delivery scheduling checks.
//
// Parameters:
//   - now: The clock.
//
// Returns:
//   - Option: The option.
func WithClock(now func() time.Time) Option {
	return func(s *Settings) {
		if now != nil {
			s.Now = now
		}
	}
}
