package types

import (
	"context"
	"io"
	"time"
)

// Pair is one form field of an outbound submission.
type Pair struct {
	Key   string
	Value string
}

// FileRef is a file part of an outbound submission. The transport reads
// Path through its FileSource when the request is sent.
type FileRef struct {
	Key  string
	Path string
}

// FormRequest is a form-encoded POST with basic auth.
type FormRequest struct {
	// ID correlates log lines and hooks for one submission.
	ID       string
	URL      string
	Username string
	Password string
	Fields   []Pair
	Files    []FileRef
}

// Result is the raw outcome of a submission. A nil Stats marks a failed
// transport; Body may still carry a local error message in that case.
type Result struct {
	Body  []byte
	Stats *Stats
	Err   error
}

// FileSource gives the builder and the transport access to attachment
// content.
type FileSource interface {
	IsReadable(path string) bool
	Open(path string) (io.ReadCloser, error)
}

// Hooks are optional callbacks around a submission.
type Hooks struct {
	OnSubmitStart func(ctx context.Context, req *FormRequest) context.Context
	OnSubmitDone  func(ctx context.Context, req *FormRequest, res Result)
}

// CertInfo describes one certificate of the peer chain.
type CertInfo struct {
	Subject   string
	Issuer    string
	NotBefore time.Time
	NotAfter  time.Time
}
