// Package supabase implements storage.Storage on the Supabase Storage REST
// API using a service-role key.
//
// Supabase lists one folder level at a time, so List matches the prefix
// against names inside the prefix's folder and does not descend into
// subfolders. Custom metadata is written on upload but not read back.
package supabase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderSupabase, func(_ context.Context, cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		return New(cfg.Supabase, log), nil
	})
}

// Storage talks to one Supabase bucket.
type Storage struct {
	baseURL    string
	bucket     string
	key        string
	httpClient *http.Client
	log        *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New creates a client for cfg.URL (e.g. https://xyz.supabase.co).
func New(cfg storage.SupabaseConfig, log *logger.Logger) *Storage {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = storage.DefaultTimeout * time.Second
	}
	return &Storage{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		bucket:     cfg.Bucket,
		key:        cfg.Key,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (s *Storage) objectURL(kind, key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	parts := []string{s.baseURL, "object"}
	if kind != "" {
		parts = append(parts, kind)
	}
	parts = append(parts, url.PathEscape(s.bucket), strings.Join(segs, "/"))
	return strings.Join(parts, "/")
}

func (s *Storage) do(ctx context.Context, method, u string, body io.Reader, hdr http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	return s.httpClient.Do(req)
}

func (s *Storage) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) (*storage.Object, error) {
	contentType := storage.ContentTypeOrDefault(opts.ContentType)
	hdr := http.Header{}
	hdr.Set("Content-Type", contentType)
	hdr.Set("x-upsert", "true")
	if len(opts.Metadata) > 0 {
		raw, err := json.Marshal(opts.Metadata)
		if err != nil {
			return nil, fmt.Errorf("supabase: encode metadata: %w", err)
		}
		hdr.Set("x-metadata", base64.StdEncoding.EncodeToString(raw))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL("", key), body)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	if opts.Size >= 0 {
		req.ContentLength = opts.Size
	}
	req.Header = hdr
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: put %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, responseError("put", key, resp)
	}
	return &storage.Object{
		Key:         key,
		Size:        opts.Size,
		ETag:        unquote(resp.Header.Get("ETag")),
		ContentType: contentType,
		Uploaded:    time.Now().UTC(),
		Metadata:    opts.Metadata,
	}, nil
}

func (s *Storage) Get(ctx context.Context, key string) (*storage.Object, io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, s.objectURL("authenticated", key), nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("supabase: get %s: %w", key, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, nil, responseError("get", key, resp)
	}
	return objectFromHeaders(key, resp), resp.Body, nil
}

func (s *Storage) Head(ctx context.Context, key string) (*storage.Object, error) {
	resp, err := s.do(ctx, http.MethodHead, s.objectURL("authenticated", key), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: head %s: %w", key, err)
	}
	defer resp.Body.Close()
	// A HEAD answer has no body to carry the not_found marker, so a bare
	// 400 is the missing-object reply of servers that use 400 for it.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, responseError("head", key, resp)
	}
	return objectFromHeaders(key, resp), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	resp, err := s.do(ctx, http.MethodDelete, s.objectURL("", key), nil, nil)
	if err != nil {
		return fmt.Errorf("supabase: delete %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		if err := responseError("delete", key, resp); err != storage.ErrNotFound {
			return err
		}
	}
	return nil
}

type listRequest struct {
	Prefix string     `json:"prefix"`
	Search string     `json:"search,omitempty"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	SortBy listSortBy `json:"sortBy"`
}

type listSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type listItem struct {
	Name      string  `json:"name"`
	ID        *string `json:"id"`
	UpdatedAt string  `json:"updated_at"`
	CreatedAt string  `json:"created_at"`
	Metadata  *struct {
		Size     int64  `json:"size"`
		ETag     string `json:"eTag"`
		MimeType string `json:"mimetype"`
	} `json:"metadata"`
}

// List asks for one extra row to detect truncation; the cursor is the
// numeric offset of the next page.
func (s *Storage) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > storage.MaxListLimit {
		limit = storage.MaxListLimit
	}
	offset := 0
	if opts.Cursor != "" {
		n, err := strconv.Atoi(opts.Cursor)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("supabase: invalid cursor %q", opts.Cursor)
		}
		offset = n
	}

	folder, search := splitPrefix(opts.Prefix)
	payload, err := json.Marshal(listRequest{
		Prefix: folder,
		Search: search,
		Limit:  limit + 1,
		Offset: offset,
		SortBy: listSortBy{Column: "name", Order: "asc"},
	})
	if err != nil {
		return nil, fmt.Errorf("supabase: encode list request: %w", err)
	}

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	resp, err := s.do(ctx, http.MethodPost, s.baseURL+"/object/list/"+url.PathEscape(s.bucket), bytes.NewReader(payload), hdr)
	if err != nil {
		return nil, fmt.Errorf("supabase: list %q: %w", opts.Prefix, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, responseError("list", opts.Prefix, resp)
	}

	var items []listItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("supabase: decode list response: %w", err)
	}

	res := &storage.ListResult{Objects: []storage.Object{}}
	if len(items) > limit {
		items = items[:limit]
		res.Truncated = true
		res.Cursor = strconv.Itoa(offset + limit)
	}
	for _, it := range items {
		// Folder placeholders carry no id.
		if it.ID == nil || it.Metadata == nil {
			continue
		}
		obj := storage.Object{
			Key:         folder + it.Name,
			Size:        it.Metadata.Size,
			ETag:        unquote(it.Metadata.ETag),
			ContentType: it.Metadata.MimeType,
		}
		for _, ts := range []string{it.CreatedAt, it.UpdatedAt} {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				obj.Uploaded = t.UTC()
				break
			}
		}
		res.Objects = append(res.Objects, obj)
	}
	return res, nil
}

// splitPrefix turns "uploads/ab" into folder "uploads/" and search "ab".
func splitPrefix(prefix string) (folder, search string) {
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		return prefix[:i+1], prefix[i+1:]
	}
	return "", prefix
}

func objectFromHeaders(key string, resp *http.Response) *storage.Object {
	obj := &storage.Object{
		Key:         key,
		Size:        resp.ContentLength,
		ETag:        unquote(resp.Header.Get("ETag")),
		ContentType: storage.ContentTypeOrDefault(resp.Header.Get("Content-Type")),
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		obj.Uploaded = lm.UTC()
	}
	return obj
}

// responseError maps Supabase failures. Missing objects come back either as
// 404 or as 400 with a not_found body depending on the server version.
func responseError(op, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode == http.StatusNotFound {
		return storage.ErrNotFound
	}
	if resp.StatusCode == http.StatusBadRequest {
		var e struct {
			StatusCode string `json:"statusCode"`
			Error      string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && (e.StatusCode == "404" || strings.EqualFold(e.Error, "not_found")) {
			return storage.ErrNotFound
		}
	}
	return fmt.Errorf("supabase: %s %s failed (status %d): %s", op, key, resp.StatusCode, strings.TrimSpace(string(body)))
}

func unquote(etag string) string {
	return strings.Trim(strings.TrimPrefix(etag, "W/"), `"`)
}
