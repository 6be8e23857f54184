package internal

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aatuh/mailgun/types"
)

const formURLEncoded = "application/x-www-form-urlencoded"

// EncodeForm renders req as a request body. Requests without files are
// url-encoded; requests with files become multipart/form-data, and every
// file is read whole through src in insertion order. Field order follows
// req.Fields.
func EncodeForm(
	req types.FormRequest,
	src types.FileSource,
) ([]byte, string, error) {
	if len(req.Files) == 0 {
		return encodeURLForm(req.Fields), formURLEncoded, nil
	}
	if src == nil {
		return nil, "", fmt.Errorf("encode form: no file source for %d files",
			len(req.Files))
	}

	var buf bytes.Buffer
	w, boundary := newFormData(&buf)
	for _, p := range req.Fields {
		if err := w.WriteField(p.Key, p.Value); err != nil {
			return nil, "", fmt.Errorf("encode form: field %s: %w", p.Key, err)
		}
	}
	for _, f := range req.Files {
		if err := writeFilePart(w, f, src); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: close: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf(
		`multipart/form-data; boundary="%s"`, boundary,
	), nil
}

func encodeURLForm(fields []types.Pair) []byte {
	var b strings.Builder
	for i, p := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return []byte(b.String())
}

func newFormData(buf *bytes.Buffer) (*multipart.Writer, string) {
	w := multipart.NewWriter(buf)
	return w, w.Boundary()
}

func writeFilePart(w *multipart.Writer, f types.FileRef, src types.FileSource) error {
	rc, err := src.Open(f.Path)
	if err != nil {
		return fmt.Errorf("encode form: open %s: %w", f.Path, err)
	}
	defer rc.Close()

	// Read whole before creating the part so a failed read leaves no
	// half-written part behind.
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("encode form: read %s: %w", f.Path, err)
	}

	name := filepath.Base(f.Path)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.Key), escapeQuotes(name),
	))
	h.Set("Content-Type", contentTypeOf(name))

	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("encode form: part %s: %w", f.Key, err)
	}
	if _, err := pw.Write(data); err != nil {
		return fmt.Errorf("encode form: write %s: %w", f.Key, err)
	}
	return nil
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
