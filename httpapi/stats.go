package httpapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/aatuh/mailgun/types"
)

// tracer records the timeline of one submission. httptrace callbacks may
// run on other goroutines, so every field is guarded by mu.
type tracer struct {
	mu sync.Mutex

	start        time.Time
	dnsDone      time.Time
	connectDone  time.Time
	gotConn      time.Time
	firstByte    time.Time
	lastRedirect time.Time
	done         time.Time
	redirects    int64
}

func newTracer() *tracer { return &tracer{} }

func (tr *tracer) attach(ctx context.Context) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		DNSDone: func(httptrace.DNSDoneInfo) {
			tr.mark(&tr.dnsDone)
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil {
				tr.mark(&tr.connectDone)
			}
		},
		GotConn: func(httptrace.GotConnInfo) {
			tr.mark(&tr.gotConn)
		},
		GotFirstResponseByte: func() {
			tr.mark(&tr.firstByte)
		},
	})
}

// mark stores now into *at unless the event was already seen, so the
// first exchange of a redirect chain defines the connection timings.
func (tr *tracer) mark(at *time.Time) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if at.IsZero() {
		*at = time.Now()
	}
}

func (tr *tracer) begin() {
	tr.mu.Lock()
	tr.start = time.Now()
	tr.mu.Unlock()
}

func (tr *tracer) end() {
	tr.mu.Lock()
	tr.done = time.Now()
	tr.mu.Unlock()
}

func (tr *tracer) redirect() {
	tr.mu.Lock()
	tr.redirects++
	tr.lastRedirect = time.Now()
	tr.mu.Unlock()
}

// since returns at-start, or zero when the event never happened.
func (tr *tracer) since(at time.Time) time.Duration {
	if at.IsZero() || tr.start.IsZero() {
		return 0
	}
	return at.Sub(tr.start)
}

func collectStats(
	tr *tracer,
	req *http.Request,
	resp *http.Response,
	uploaded, downloaded int64,
) *types.Stats {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	s := &types.Stats{
		HTTPCode:              resp.StatusCode,
		URL:                   req.URL.String(),
		ContentType:           resp.Header.Get("Content-Type"),
		HeaderSize:            responseHeaderSize(resp),
		RequestSize:           requestHeaderSize(req) + uploaded,
		FileTime:              -1,
		SSLVerifyResult:       sslVerifyResult(resp.TLS),
		RedirectCount:         tr.redirects,
		TotalTime:             tr.since(tr.done),
		NameLookupTime:        tr.since(tr.dnsDone),
		ConnectTime:           tr.since(tr.connectDone),
		PreTransferTime:       tr.since(tr.gotConn),
		StartTransferTime:     tr.since(tr.firstByte),
		SizeUpload:            uploaded,
		SizeDownload:          downloaded,
		UploadContentLength:   req.ContentLength,
		DownloadContentLength: resp.ContentLength,
		CertInfo:              certInfo(resp.TLS),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		s.URL = resp.Request.URL.String()
	}
	if tr.redirects > 0 {
		s.RedirectTime = tr.since(tr.lastRedirect)
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		s.FileTime = lm.Unix()
	}
	if secs := s.TotalTime.Seconds(); secs > 0 {
		s.SpeedUpload = float64(uploaded) / secs
		s.SpeedDownload = float64(downloaded) / secs
	}
	return s
}

// sslVerifyResult follows curl: 0 for a verified chain, non-zero otherwise.
// Plain HTTP reports -1.
func sslVerifyResult(state *tls.ConnectionState) int64 {
	switch {
	case state == nil:
		return -1
	case len(state.VerifiedChains) > 0:
		return 0
	default:
		return 1
	}
}

func certInfo(state *tls.ConnectionState) []types.CertInfo {
	if state == nil || len(state.PeerCertificates) == 0 {
		return nil
	}
	out := make([]types.CertInfo, 0, len(state.PeerCertificates))
	for _, c := range state.PeerCertificates {
		out = append(out, types.CertInfo{
			Subject:   c.Subject.String(),
			Issuer:    c.Issuer.String(),
			NotBefore: c.NotBefore,
			NotAfter:  c.NotAfter,
		})
	}
	return out
}

func requestHeaderSize(req *http.Request) int64 {
	var c byteCounter
	fmt.Fprintf(&c, "%s %s HTTP/1.1\r\n", req.Method, req.URL.RequestURI())
	fmt.Fprintf(&c, "Host: %s\r\n", req.URL.Host)
	_ = req.Header.Write(&c)
	_, _ = io.WriteString(&c, "\r\n")
	return c.n
}

func responseHeaderSize(resp *http.Response) int64 {
	var c byteCounter
	fmt.Fprintf(&c, "%s %s\r\n", resp.Proto, resp.Status)
	_ = resp.Header.Write(&c)
	_, _ = io.WriteString(&c, "\r\n")
	return c.n
}

type byteCounter struct{ n int64 }

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
