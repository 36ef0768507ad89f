package proxy

import (
	"errors"
	"net/http"
)

// bodyTooLarge reports whether parsing r's body failed because the body
// limit was hit. A limit that cuts through a multipart header surfaces as a
// protocol error without the cause, so the body is read once more: a
// MaxBytesReader keeps returning *http.MaxBytesError after the first one.
func bodyTooLarge(r *http.Request, err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	if r.Body == nil {
		return false
	}
	var buf [1]byte
	_, readErr := r.Body.Read(buf[:])
	return errors.As(readErr, &tooLarge)
}
