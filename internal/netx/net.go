// Package netx builds request bodies that need more than a JSON encoder.
package netx

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
)

// DefaultImageContentType is used when the file extension says nothing useful.
const DefaultImageContentType = "image/jpeg"

// MultipartFile encodes a single-file multipart/form-data body. The whole
// body is buffered so the same bytes can be sent again on a retry.
// It returns the body and the Content-Type header value (with boundary).
func MultipartFile(field, filename string, r io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		ct = DefaultImageContentType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(filename)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
