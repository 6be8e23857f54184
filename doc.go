// Package mailgun builds transactional email requests for the Mailgun
// messages API. A Message accumulates and validates fields, serializes them
// to the API's form encoding and hands them to a Transport; the Response
// exposes the body and the transport statistics of the exchange.
//
// The httpapi subpackage provides the default net/http transport, and the
// config subpackage loads domain and credentials from the environment.
//
//	client := mailgun.NewClient("example.com", key, httpapi.New(httpapi.Config{}))
//	resp, err := client.NewMessage().
//		SetFromNamed("Example", "no-reply@example.com").
//		AddTo("user@example.org").
//		SetSubject("Hello").
//		SetText("Hi there").
//		Send(ctx)
package mailgun
