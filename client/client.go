package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kbukum/fileproxy/api"
	"github.com/kbukum/fileproxy/resilience"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to one proxy.
type Client struct {
	httpClient *http.Client
	config     Config
	baseURL    string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Its transport and
// timeout win over Config.Timeout and Config.TLS.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New validates cfg and creates a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.ClientConfig()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	c := &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UploadInput describes one file to upload.
type UploadInput struct {
	// Path is the explicit key; empty lets the server generate one.
	Path        string
	FileName    string
	ContentType string
	Body        io.Reader
}

// Upload streams in.Body to POST /upload. The body cannot be replayed, so
// uploads are never retried.
func (c *Client) Upload(ctx context.Context, in UploadInput) (*api.UploadResponse, error) {
	if in.Body == nil {
		return nil, fmt.Errorf("client: upload body is nil")
	}
	body, contentType := streamMultipart(in)
	defer body.Close()

	resp, err := c.send(ctx, request{method: http.MethodPost, path: "/upload", body: body, contentType: contentType})
	if err != nil {
		return nil, err
	}
	var out api.UploadResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// File is an open download. The caller closes Body.
type File struct {
	Body        io.ReadCloser
	ContentType string
	// Size is -1 when the server sent no Content-Length.
	Size int64
	// ETag is unquoted.
	ETag string
}

// Download opens GET /file/{key}.
func (c *Client) Download(ctx context.Context, key string) (*File, error) {
	resp, err := c.sendIdempotent(ctx, request{method: http.MethodGet, path: "/file/" + url.PathEscape(key)}, nil)
	if err != nil {
		return nil, err
	}
	return &File{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
	}, nil
}

// SignedURL returns the retrieval URL for an existing key.
func (c *Client) SignedURL(ctx context.Context, key string) (string, error) {
	var out api.SignedURLResponse
	req := request{method: http.MethodGet, path: "/signed-url", query: url.Values{"key": {key}}}
	if err := c.doJSON(ctx, req, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Delete removes key. Deleting a missing key succeeds.
func (c *Client) Delete(ctx context.Context, key string) error {
	payload, err := json.Marshal(api.DeleteRequest{Key: key})
	if err != nil {
		return err
	}
	var out api.DeleteResponse
	req := request{method: http.MethodDelete, path: "/delete", contentType: "application/json"}
	return c.doJSON(ctx, req, payload, &out)
}

// ListOptions selects one page.
type ListOptions struct {
	Prefix string
	// Limit of 0 leaves the server default.
	Limit  int
	Cursor string
}

// List fetches a single page.
func (c *Client) List(ctx context.Context, opts ListOptions) (*api.ListResponse, error) {
	q := url.Values{}
	if opts.Prefix != "" {
		q.Set("prefix", opts.Prefix)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	var out api.ListResponse
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/list", query: q}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll follows cursors from opts until the listing is no longer
// truncated. opts.Limit sets the page size.
func (c *Client) ListAll(ctx context.Context, opts ListOptions) ([]api.ObjectEntry, error) {
	var all []api.ObjectEntry
	for {
		page, err := c.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Objects...)
		if !page.Truncated || page.Cursor == nil || *page.Cursor == "" {
			return all, nil
		}
		opts.Cursor = *page.Cursor
	}
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) doJSON(ctx context.Context, req request, payload []byte, out any) error {
	resp, err := c.sendIdempotent(ctx, req, payload)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fileproxy: decode %s response: %w", resp.Request.URL.Path, err)
	}
	return nil
}

// sendIdempotent repeats req per Config.Retry while it fails with a
// transport error, a 429 or a 5xx. payload, when set, is resent on every attempt.
func (c *Client) sendIdempotent(ctx context.Context, req request, payload []byte) (*http.Response, error) {
	var resp *http.Response
	err := resilience.Do(ctx, c.config.Retry, retryable, func(ctx context.Context) error {
		if payload != nil {
			req.body = bytes.NewReader(payload)
		}
		var err error
		resp, err = c.send(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// send performs a single attempt and returns the response when it is 2xx.
// Otherwise the body is consumed into an *APIError.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("fileproxy: build request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.config.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fileproxy: %s %s: %w", r.method, r.path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, newAPIError(resp.StatusCode, data)
}
