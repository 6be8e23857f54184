package mailgun

import (
	"encoding/json"
	"time"

	"github.com/aatuh/mailgun/types"
)

// Values returned by metric accessors when the transport produced no
// statistics.
const (
	UnavailableInt      int64         = -1
	UnavailableFloat    float64       = -1
	UnavailableDuration time.Duration = -1
	UnavailableString                 = ""
)

// Response is the outcome of Send: the raw body plus the transport
// statistics. When the transport failed, every metric accessor returns
// the Unavailable value of its type instead of failing.
type Response struct {
	body  []byte
	stats *types.Stats
	err   error
}

// SendResult is the body Mailgun returns for an accepted message.
type SendResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// NewResponse wraps a transport result.
func NewResponse(res types.Result) *Response {
	return &Response{body: res.Body, stats: res.Stats, err: res.Err}
}

// Available reports whether the transport produced statistics.
func (r *Response) Available() bool { return r.stats != nil }

// Success reports a 2xx status.
func (r *Response) Success() bool {
	code := r.HTTPCode()
	return code >= 200 && code < 300
}

// TransportErr returns the transport's own error, if it reported one.
func (r *Response) TransportErr() error { return r.err }

// Body returns the raw response body. It may hold a local error message
// when the transport failed.
func (r *Response) Body() string { return string(r.body) }

// HasBody reports whether any body was returned.
func (r *Response) HasBody() bool { return r.body != nil }

// Object decodes the body as a JSON object. Decoding happens on every call.
func (r *Response) Object() (map[string]any, error) {
	var out map[string]any
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if r.body == nil {
		return wrapf(ErrMalformedResponse, "no response body")
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return wrapf(ErrMalformedResponse, "%v", err)
	}
	return nil
}

// Result decodes Mailgun's {"id", "message"} reply.
func (r *Response) Result() (*SendResult, error) {
	var out SendResult
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the raw statistics record, nil when unavailable.
func (r *Response) Stats() *types.Stats { return r.stats }

// HTTPCode returns the status code of the last response.
func (r *Response) HTTPCode() int {
	if r.stats == nil {
		return int(UnavailableInt)
	}
	return r.stats.HTTPCode
}

// URL returns the last effective URL.
func (r *Response) URL() string {
	if r.stats == nil {
		return UnavailableString
	}
	return r.stats.URL
}

// ContentType returns the response Content-Type.
func (r *Response) ContentType() string {
	if r.stats == nil {
		return UnavailableString
	}
	return r.stats.ContentType
}

func (r *Response) intMetric(f func(*types.Stats) int64) int64 {
	if r.stats == nil {
		return UnavailableInt
	}
	return f(r.stats)
}

func (r *Response) floatMetric(f func(*types.Stats) float64) float64 {
	if r.stats == nil {
		return UnavailableFloat
	}
	return f(r.stats)
}

func (r *Response) durationMetric(f func(*types.Stats) time.Duration) time.Duration {
	if r.stats == nil {
		return UnavailableDuration
	}
	return f(r.stats)
}

// HeaderSize returns the size of the received headers in bytes.
func (r *Response) HeaderSize() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.HeaderSize })
}

// RequestSize returns the size of the issued request in bytes.
func (r *Response) RequestSize() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.RequestSize })
}

// FileTime returns the remote Last-Modified time as a Unix timestamp, -1
// when unknown.
func (r *Response) FileTime() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.FileTime })
}

// SSLVerifyResult returns 0 when the peer certificate verified.
func (r *Response) SSLVerifyResult() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.SSLVerifyResult })
}

// RedirectCount returns the number of followed redirects.
func (r *Response) RedirectCount() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.RedirectCount })
}

// TotalTime returns the duration of the whole exchange, -1 when unavailable.
func (r *Response) TotalTime() time.Duration {
	return r.durationMetric(func(s *types.Stats) time.Duration { return s.TotalTime })
}

// LookupTime returns the time until name resolution finished, -1 when
// unavailable.
func (r *Response) LookupTime() time.Duration {
	return r.durationMetric(func(s *types.Stats) time.Duration { return s.NameLookupTime })
}

// ConnectTime returns the time until the TCP connection was established,
// -1 when unavailable.
func (r *Response) ConnectTime() time.Duration {
	return r.durationMetric(func(s *types.Stats) time.Duration { return s.ConnectTime })
}

// PreTransferTime returns the time until the connection was ready to send,
// -1 when unavailable.
func (r *Response) PreTransferTime() time.Duration {
	return r.durationMetric(func(s *types.Stats) time.Duration { return s.PreTransferTime })
}

// StartTransferTime returns the time until the first response byte.
func (r *Response) StartTransferTime() time.Duration {
	return r.durationMetric(func(s *types.Stats) time.Duration { return s.StartTransferTime })
}

// RedirectTime returns the time spent before the final request of a
// redirect chain.
func (r *Response) RedirectTime() time.Duration {
	return r.durationMetric(func(s *types.Stats) time.Duration { return s.RedirectTime })
}

// UploadSize returns the request body size in bytes, -1 when unavailable.
func (r *Response) UploadSize() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.SizeUpload })
}

// DownloadSize returns the response body size in bytes, -1 when unavailable.
func (r *Response) DownloadSize() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.SizeDownload })
}

// UploadSpeed returns the average upload speed in bytes per second.
func (r *Response) UploadSpeed() float64 {
	return r.floatMetric(func(s *types.Stats) float64 { return s.SpeedUpload })
}

// DownloadSpeed returns the average download speed in bytes per second.
func (r *Response) DownloadSpeed() float64 {
	return r.floatMetric(func(s *types.Stats) float64 { return s.SpeedDownload })
}

// UploadContentLength returns the request Content-Length in bytes, -1
// when unavailable.
func (r *Response) UploadContentLength() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.UploadContentLength })
}

// DownloadContentLength returns the announced Content-Length, -1 when
// the server did not send one.
func (r *Response) DownloadContentLength() int64 {
	return r.intMetric(func(s *types.Stats) int64 { return s.DownloadContentLength })
}

// CertificateInfo returns the peer certificate chain, nil for plain HTTP
// or when unavailable.
func (r *Response) CertificateInfo() []types.CertInfo {
	if r.stats == nil {
		return nil
	}
	return r.stats.CertInfo
}
