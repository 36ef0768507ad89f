package client_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/fileproxy/app"
	"github.com/kbukum/fileproxy/client"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/resilience"
	"github.com/kbukum/fileproxy/security"
	"github.com/kbukum/fileproxy/security/tlstest"
	"github.com/kbukum/fileproxy/server"
	"github.com/kbukum/fileproxy/storage"
	"github.com/kbukum/fileproxy/storage/memory"
)

const secret = "s3cret"

func newProxy(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	cfg := &app.Config{AuthSecret: secret}
	cfg.Storage.Provider = storage.ProviderMemory
	cfg.ApplyDefaults()

	store := memory.New()
	srv := server.New(cfg.Server, logger.NewNop())
	app.Mount(srv, store, cfg, nil, nil, logger.NewNop())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func newClient(t *testing.T, baseURL, token string) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{BaseURL: baseURL, Secret: token})
	require.NoError(t, err)
	return c
}

func TestRoundTrip(t *testing.T) {
	ts, _ := newProxy(t)
	c := newClient(t, ts.URL, secret)
	ctx := context.Background()

	up, err := c.Upload(ctx, client.UploadInput{
		Path:        "docs/a \"quoted\" name.txt",
		FileName:    `a "quoted" name.txt`,
		ContentType: "text/plain",
		Body:        strings.NewReader("hello world"),
	})
	require.NoError(t, err)
	assert.True(t, up.Success)
	assert.Equal(t, "docs/a \"quoted\" name.txt", up.Key)
	assert.Equal(t, int64(11), up.Size)

	f, err := c.Download(ctx, up.Key)
	require.NoError(t, err)
	body, err := io.ReadAll(f.Body)
	require.NoError(t, err)
	require.NoError(t, f.Body.Close())
	assert.Equal(t, "hello world", string(body))
	assert.Equal(t, "text/plain", f.ContentType)
	assert.Equal(t, int64(11), f.Size)
	assert.NotEmpty(t, f.ETag)
	assert.NotContains(t, f.ETag, `"`)

	signed, err := c.SignedURL(ctx, up.Key)
	require.NoError(t, err)
	assert.Equal(t, up.URL, signed)

	require.NoError(t, c.Delete(ctx, up.Key))
	require.NoError(t, c.Delete(ctx, up.Key), "delete is idempotent")

	_, err = c.Download(ctx, up.Key)
	assert.True(t, client.IsNotFound(err))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "File not found", apiErr.Message)
}

func TestUpload_GeneratedKey(t *testing.T) {
	ts, store := newProxy(t)
	c := newClient(t, ts.URL, secret)

	up, err := c.Upload(context.Background(), client.UploadInput{FileName: "photo.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Regexp(t, `^uploads/\d+_[0-9a-f]{8}\.png$`, up.Key)
	assert.Equal(t, "application/octet-stream", up.Type)
	assert.Equal(t, 1, store.Len())
}

func TestUpload_SourceError(t *testing.T) {
	ts, store := newProxy(t)
	c := newClient(t, ts.URL, secret)

	src := io.MultiReader(strings.NewReader("partial"), errReader{errors.New("disk gone")})
	_, err := c.Upload(context.Background(), client.UploadInput{FileName: "x.bin", Body: src})
	require.Error(t, err)
	assert.Zero(t, store.Len())
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestUnauthorized(t *testing.T) {
	ts, _ := newProxy(t)
	c := newClient(t, ts.URL, "wrong")

	_, err := c.List(context.Background(), client.ListOptions{})
	assert.True(t, client.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "HTTP 401: Unauthorized")

	_, err = c.SignedURL(context.Background(), "missing")
	assert.True(t, client.IsUnauthorized(err))
}

func TestListAll_FollowsCursor(t *testing.T) {
	ts, store := newProxy(t)
	c := newClient(t, ts.URL, secret)
	ctx := context.Background()

	for _, k := range []string{"p/1", "p/2", "p/3", "p/4", "p/5", "q/6"} {
		_, err := store.Put(ctx, k, strings.NewReader(k), storage.PutOptions{})
		require.NoError(t, err)
	}

	page, err := c.List(ctx, client.ListOptions{Prefix: "p/", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Objects, 2)
	assert.True(t, page.Truncated)
	require.NotNil(t, page.Cursor)

	all, err := c.ListAll(ctx, client.ListOptions{Prefix: "p/", Limit: 2})
	require.NoError(t, err)
	keys := make([]string, 0, len(all))
	for _, o := range all {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"p/1", "p/2", "p/3", "p/4", "p/5"}, keys)
}

func TestAPIError_PlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL, "").List(context.Background(), client.ListOptions{})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestConfig_Validate(t *testing.T) {
	for _, base := range []string{"", "files.example.com", "://bad"} {
		_, err := client.New(client.Config{BaseURL: base})
		assert.Error(t, err, base)
	}
	_, err := client.New(client.Config{BaseURL: "https://files.example.com/"})
	assert.NoError(t, err)
}

var fastRetry = resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

func flaky(failures int32, status int) (http.Handler, *atomic.Int32) {
	var calls atomic.Int32
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if calls.Add(1) <= failures {
			http.Error(w, `{"error":"busy"}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true}`)
	}), &calls
}

func TestRetry_IdempotentCalls(t *testing.T) {
	h, calls := flaky(2, http.StatusServiceUnavailable)
	ts := httptest.NewServer(h)
	defer ts.Close()

	c, err := client.New(client.Config{BaseURL: ts.URL, Retry: fastRetry})
	require.NoError(t, err)
	require.NoError(t, c.Delete(context.Background(), "a.txt"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_GivesUp(t *testing.T) {
	h, calls := flaky(10, http.StatusInternalServerError)
	ts := httptest.NewServer(h)
	defer ts.Close()

	c, err := client.New(client.Config{BaseURL: ts.URL, Retry: fastRetry})
	require.NoError(t, err)
	err = c.Delete(context.Background(), "a.txt")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_ClientErrorsAreFinal(t *testing.T) {
	h, calls := flaky(10, http.StatusBadRequest)
	ts := httptest.NewServer(h)
	defer ts.Close()

	c, err := client.New(client.Config{BaseURL: ts.URL, Retry: fastRetry})
	require.NoError(t, err)
	_, err = c.SignedURL(context.Background(), "a.txt")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_UploadSentOnce(t *testing.T) {
	h, calls := flaky(10, http.StatusServiceUnavailable)
	ts := httptest.NewServer(h)
	defer ts.Close()

	c, err := client.New(client.Config{BaseURL: ts.URL, Retry: fastRetry})
	require.NoError(t, err)
	_, err = c.Upload(context.Background(), client.UploadInput{FileName: "a.txt", Body: strings.NewReader("hi")})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTLS_TrustsConfiguredCA(t *testing.T) {
	certs := tlstest.New(t)
	h, _ := flaky(0, 0)
	ts := httptest.NewUnstartedServer(h)
	cert, err := tls.LoadX509KeyPair(certs.CertFile, certs.KeyFile)
	require.NoError(t, err)
	ts.TLS = &tls.Config{Certificates: []tls.Certificate{cert}}
	ts.StartTLS()
	defer ts.Close()

	untrusted, err := client.New(client.Config{BaseURL: ts.URL, Retry: resilience.RetryConfig{MaxAttempts: 1}})
	require.NoError(t, err)
	assert.Error(t, untrusted.Delete(context.Background(), "a.txt"))

	trusted, err := client.New(client.Config{
		BaseURL: ts.URL,
		TLS:     security.TLSConfig{CAFile: certs.CAFile},
	})
	require.NoError(t, err)
	assert.NoError(t, trusted.Delete(context.Background(), "a.txt"))
}
