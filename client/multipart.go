package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/kbukum/fileproxy/api"
)

// streamMultipart encodes the upload form on the fly. The returned reader
// yields the body; any encoding or source error surfaces from its Read.
func streamMultipart(in UploadInput) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(w, in))
	}()
	return pr, w.FormDataContentType()
}

func writeForm(w *multipart.Writer, in UploadInput) error {
	if in.Path != "" {
		if err := w.WriteField(api.FormFieldPath, in.Path); err != nil {
			return err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+api.FormFieldFile+`"; filename="`+escapeQuotes(in.FileName)+`"`)
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, in.Body); err != nil {
		return fmt.Errorf("read upload source: %w", err)
	}
	return w.Close()
}

// escapeQuotes backslash-escapes quotes and backslashes in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
