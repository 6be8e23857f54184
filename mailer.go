package mailgun

import (
	"context"

	"github.com/aatuh/mailgun/types"
)

// Transport performs the network side of a submission.
// Implementations POST the form with basic auth, read file parts through
// their own FileSource and own timeout policy.
type Transport interface {
	// SubmitForm sends req and reports the outcome.
	//
	// Parameters:
	//   - ctx: The context for cancellation.
	//   - req: The form request.
	//
	// Returns:
	//   - types.Result: The raw body and transport statistics. A failed
	//     exchange is reported with nil Stats, never by panicking.
	SubmitForm(ctx context.Context, req types.FormRequest) types.Result
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req types.FormRequest) types.Result

// SubmitForm calls f.
func (f TransportFunc) SubmitForm(ctx context.Context, req types.FormRequest) types.Result {
	return f(ctx, req)
}
