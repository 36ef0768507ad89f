package s3

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/smithy-go"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
	"github.com/kbukum/fileproxy/storage/memory"
	"github.com/kbukum/fileproxy/storage/storagetest"
)

const testBucket = "media"

// fakeS3 serves the path-style subset of the S3 API the backend uses,
// keeping objects in a memory store.
type fakeS3 struct {
	store *memory.Store
}

type listResult struct {
	XMLName               xml.Name      `xml:"ListBucketResult"`
	Name                  string        `xml:"Name"`
	Prefix                string        `xml:"Prefix"`
	KeyCount              int           `xml:"KeyCount"`
	MaxKeys               int           `xml:"MaxKeys"`
	IsTruncated           bool          `xml:"IsTruncated"`
	NextContinuationToken string        `xml:"NextContinuationToken,omitempty"`
	Contents              []listContent `xml:"Contents"`
}

type listContent struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rest := strings.TrimPrefix(r.URL.Path, "/"+testBucket)
	key := strings.TrimPrefix(rest, "/")

	if key == "" && r.Method == http.MethodGet {
		f.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		meta := map[string]string{}
		for name, vals := range r.Header {
			if strings.HasPrefix(strings.ToLower(name), "x-amz-meta-") {
				meta[strings.ToLower(strings.TrimPrefix(strings.ToLower(name), "x-amz-meta-"))] = vals[0]
			}
		}
		obj, err := f.store.Put(ctx, key, r.Body, storage.PutOptions{
			ContentType: r.Header.Get("Content-Type"),
			Size:        r.ContentLength,
			Metadata:    meta,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("ETag", `"`+obj.ETag+`"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		obj, body, err := f.store.Get(ctx, key)
		if err != nil {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			}
			return
		}
		defer body.Close()
		h := w.Header()
		h.Set("Content-Type", obj.ContentType)
		h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		h.Set("ETag", `"`+obj.ETag+`"`)
		h.Set("Last-Modified", obj.Uploaded.Format(http.TimeFormat))
		for k, v := range obj.Metadata {
			h.Set("X-Amz-Meta-"+k, v)
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = io.Copy(w, body)
		}
	case http.MethodDelete:
		_ = f.store.Delete(ctx, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("max-keys"))
	res, err := f.store.List(r.Context(), storage.ListOptions{
		Prefix: q.Get("prefix"),
		Cursor: q.Get("continuation-token"),
		Limit:  limit,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := listResult{
		Name:                  testBucket,
		Prefix:                q.Get("prefix"),
		KeyCount:              len(res.Objects),
		MaxKeys:               limit,
		IsTruncated:           res.Truncated,
		NextContinuationToken: res.Cursor,
	}
	for _, o := range res.Objects {
		out.Contents = append(out.Contents, listContent{
			Key:          o.Key,
			LastModified: o.Uploaded.Format("2006-01-02T15:04:05.000Z"),
			ETag:         `"` + o.ETag + `"`,
			Size:         o.Size,
		})
	}
	w.Header().Set("Content-Type", "application/xml")
	_ = xml.NewEncoder(w).Encode(out)
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	srv := httptest.NewServer(&fakeS3{store: memory.New()})
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), storage.S3Config{
		Bucket:    testBucket,
		Region:    "auto",
		Endpoint:  srv.URL,
		AccessKey: "test-access",
		SecretKey: "test-secret",
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStorage_Contract(t *testing.T) {
	storagetest.Run(t, newTestStorage(t))
}

func TestStorage_MetadataCasingRestored(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	_, err := s.Put(ctx, "uploads/a.txt", strings.NewReader("a"), storage.PutOptions{
		Size:     1,
		Metadata: map[string]string{storage.MetaOriginalName: "a.txt", storage.MetaUploadedAt: "2026-01-01T00:00:00.000Z"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	obj, err := s.Head(ctx, "uploads/a.txt")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if obj.Metadata[storage.MetaOriginalName] != "a.txt" || obj.Metadata[storage.MetaUploadedAt] == "" {
		t.Errorf("metadata = %v", obj.Metadata)
	}
}

type apiError struct{ code string }

func (e apiError) Error() string                 { return e.code }
func (e apiError) ErrorCode() string             { return e.code }
func (e apiError) ErrorMessage() string          { return e.code }
func (e apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{apiError{"NoSuchKey"}, true},
		{fmt.Errorf("wrapped: %w", apiError{"NotFound"}), true},
		{apiError{"AccessDenied"}, false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := isNotFound(tt.err); got != tt.want {
			t.Errorf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	if unquote(`"abc"`) != "abc" || unquote("abc") != "abc" {
		t.Error("unquote mismatch")
	}
}
