package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kbukum/fileproxy/api"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	// Message is the server's {"error"} text, or the raw body when it
	// was not JSON.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fileproxy: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the proxy.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is a 401 from the proxy.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newAPIError(status int, body []byte) *APIError {
	var resp api.ErrorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &resp) == nil && resp.Error != "" {
		msg = resp.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
