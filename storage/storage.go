package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Get and Head when the key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Metadata keys attached to every uploaded object.
const (
	MetaOriginalName = "originalName"
	MetaUploadedAt   = "uploadedAt"
)

// DefaultContentType is used when an object carries no content type.
const DefaultContentType = "application/octet-stream"

// Object describes a stored object without its body.
type Object struct {
	Key         string
	Size        int64
	ETag        string // unquoted
	ContentType string
	Uploaded    time.Time
	Metadata    map[string]string
}

// PutOptions carries the attributes written alongside the body.
type PutOptions struct {
	ContentType string
	// Size is the body length in bytes, or -1 when unknown.
	Size     int64
	Metadata map[string]string
}

// ListOptions selects one page of keys.
type ListOptions struct {
	Prefix string
	// Cursor is the opaque token returned by a previous truncated page.
	Cursor string
	Limit  int
}

// ListResult is one page of a listing, ordered by key.
type ListResult struct {
	Objects   []Object
	Truncated bool
	// Cursor resumes the listing; empty when Truncated is false.
	Cursor string
}

// Storage is the bucket abstraction every backend implements.
type Storage interface {
	// Put streams body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (*Object, error)
	// Get opens the object body. The caller closes the reader.
	Get(ctx context.Context, key string) (*Object, io.ReadCloser, error)
	// Head returns object attributes without transferring the body.
	Head(ctx context.Context, key string) (*Object, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns a single page of objects whose keys start with Prefix.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

// ContentTypeOrDefault returns ct, or DefaultContentType when ct is empty.
func ContentTypeOrDefault(ct string) string {
	if ct == "" {
		return DefaultContentType
	}
	return ct
}
