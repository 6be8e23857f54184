package mailgun

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is; returned errors carry the
// offending value as context.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrIncompleteMessage = errors.New("incomplete message")
	ErrUnreadable        = errors.New("unreadable attachment")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoTransport       = errors.New("no transport configured")
)

// wrapf annotates sentinel with a formatted detail.
func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
