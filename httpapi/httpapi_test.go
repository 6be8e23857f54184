package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/mailgun/internal"
	"github.com/aatuh/mailgun/types"
)

func newRequest(url string) types.FormRequest {
	return types.FormRequest{
		ID:       "req-1",
		URL:      url,
		Username: "api",
		Password: "key-123",
		Fields: []types.Pair{
			{Key: "from", Value: "a@dom.com"},
			{Key: "to[1]", Value: "b@dom.com"},
			{Key: "to[2]", Value: "Team <c@dom.com>"},
			{Key: "subject", Value: "Hi"},
			{Key: "text", Value: "Body"},
		},
	}
}

func TestSubmitFormURLEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/dom.com/messages", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-123", pass)

		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "a@dom.com", r.PostForm.Get("from"))
		assert.Equal(t, "b@dom.com", r.PostForm.Get("to[1]"))
		assert.Equal(t, "Team <c@dom.com>", r.PostForm.Get("to[2]"))
		assert.Len(t, r.PostForm, 5)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Last-Modified", "Wed, 21 Oct 2015 07:28:00 GMT")
		_, _ = io.WriteString(w, `{"id":"<abc@dom.com>","message":"Queued. Thank you."}`)
	}))
	defer srv.Close()

	tr := New(Config{})
	res := tr.SubmitForm(context.Background(), newRequest(srv.URL+"/v3/dom.com/messages"))

	require.NoError(t, res.Err)
	require.NotNil(t, res.Stats)
	assert.JSONEq(t, `{"id":"<abc@dom.com>","message":"Queued. Thank you."}`, string(res.Body))

	s := res.Stats
	assert.Equal(t, http.StatusOK, s.HTTPCode)
	assert.Equal(t, srv.URL+"/v3/dom.com/messages", s.URL)
	assert.Equal(t, "application/json", s.ContentType)
	assert.Equal(t, int64(len(res.Body)), s.SizeDownload)
	assert.Equal(t, s.UploadContentLength, s.SizeUpload)
	assert.Greater(t, s.SizeUpload, int64(0))
	assert.Greater(t, s.HeaderSize, int64(0))
	assert.Greater(t, s.RequestSize, s.SizeUpload)
	assert.Equal(t, int64(-1), s.SSLVerifyResult)
	assert.Equal(t, int64(0), s.RedirectCount)
	assert.Equal(t, int64(1445412480), s.FileTime)
	assert.Greater(t, s.TotalTime, time.Duration(0))
	assert.GreaterOrEqual(t, s.TotalTime, s.StartTransferTime)
	assert.Nil(t, s.CertInfo)
}

func TestSubmitFormMultipart(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/report.txt", []byte("quarterly"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Hi", r.MultipartForm.Value["subject"][0])

		fh := r.MultipartForm.File["attachment[1]"]
		if !assert.Len(t, fh, 1) {
			return
		}
		assert.Equal(t, "report.txt", fh[0].Filename)
		f, err := fh[0].Open()
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		_ = f.Close()
		assert.Equal(t, "quarterly", string(data))

		_, _ = io.WriteString(w, `{"id":"1"}`)
	}))
	defer srv.Close()

	req := newRequest(srv.URL)
	req.Files = []types.FileRef{{Key: "attachment[1]", Path: "/tmp/report.txt"}}

	tr := New(Config{}, WithFileSource(internal.NewFileSource(fs)))
	res := tr.SubmitForm(context.Background(), req)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Stats)
	assert.Equal(t, http.StatusOK, res.Stats.HTTPCode)
}

func TestSubmitFormMissingAttachment(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	req := newRequest(srv.URL)
	req.Files = []types.FileRef{{Key: "attachment[1]", Path: "/gone.txt"}}

	tr := New(Config{}, WithFileSource(internal.NewFileSource(afero.NewMemMapFs())))
	res := tr.SubmitForm(context.Background(), req)

	assert.False(t, called)
	assert.Nil(t, res.Stats)
	require.Error(t, res.Err)
	assert.Contains(t, string(res.Body), "/gone.txt")
}

func TestSubmitFormConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var logs bytes.Buffer
	tr := New(Config{}, WithLogger(zerolog.New(&logs)))
	res := tr.SubmitForm(context.Background(), newRequest(url))

	assert.Nil(t, res.Stats)
	require.Error(t, res.Err)
	assert.NotEmpty(t, res.Body)
	assert.Contains(t, logs.String(), "submission failed")
	assert.Contains(t, logs.String(), "req-1")
}

func TestSubmitFormRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusPermanentRedirect)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "Hi", r.PostForm.Get("subject"))
		w.WriteHeader(http.StatusAccepted)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := New(Config{}).SubmitForm(context.Background(), newRequest(srv.URL+"/old"))
	require.NotNil(t, res.Stats)
	assert.Equal(t, http.StatusAccepted, res.Stats.HTTPCode)
	assert.Equal(t, int64(1), res.Stats.RedirectCount)
	assert.Equal(t, srv.URL+"/new", res.Stats.URL)
	assert.Greater(t, res.Stats.RedirectTime, time.Duration(0))

	res = New(Config{MaxRedirects: -1}).SubmitForm(context.Background(), newRequest(srv.URL+"/old"))
	require.NotNil(t, res.Stats)
	assert.Equal(t, http.StatusPermanentRedirect, res.Stats.HTTPCode)
	assert.Equal(t, int64(0), res.Stats.RedirectCount)
}

func TestSubmitFormTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	res := New(Config{Timeout: 50 * time.Millisecond}).
		SubmitForm(context.Background(), newRequest(srv.URL))
	assert.Nil(t, res.Stats)
	require.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestSubmitFormTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	res := New(Config{}, WithHTTPClient(srv.Client())).
		SubmitForm(context.Background(), newRequest(srv.URL))
	require.NotNil(t, res.Stats)
	assert.Equal(t, int64(0), res.Stats.SSLVerifyResult)
	assert.NotEmpty(t, res.Stats.CertInfo)
}
