// Package api contains the JSON request and response bodies of the proxy's
// HTTP interface, shared by the server handlers and the Go client.
package api

import apperrors "github.com/kbukum/fileproxy/errors"

// Upload form field names.
const (
	FormFieldFile = "file"
	FormFieldPath = "path"
)

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	URL     string `json:"url"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
}

// SignedURLResponse is returned by GET /signed-url. Expires is always null:
// the URL is a plain retrieval URL, not a time-limited signature.
type SignedURLResponse struct {
	URL     string  `json:"url"`
	Expires *string `json:"expires"`
}

// DeleteRequest is the body of DELETE /delete.
type DeleteRequest struct {
	Key string `json:"key"`
}

// DeleteResponse is returned by DELETE /delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ObjectEntry is one listed object.
type ObjectEntry struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Uploaded string `json:"uploaded"`
	ETag     string `json:"etag"`
}

// ListResponse is returned by GET /list. Cursor is null unless Truncated.
type ListResponse struct {
	Success   bool          `json:"success"`
	Objects   []ObjectEntry `json:"objects"`
	Truncated bool          `json:"truncated"`
	Cursor    *string       `json:"cursor"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse = apperrors.ErrorResponse

// TimeLayout formats uploaded timestamps: ISO-8601 UTC with milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"
