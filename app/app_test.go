package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/fileproxy/bootstrap"
	"github.com/kbukum/fileproxy/config"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/server"
	"github.com/kbukum/fileproxy/server/endpoint"
	"github.com/kbukum/fileproxy/storage"
	"github.com/kbukum/fileproxy/storage/memory"
)

func testConfig() *Config {
	cfg := &Config{
		AllowedOrigins: "https://app.example.com, https://admin.example.com",
		AuthSecret:     "s3cret",
	}
	cfg.Storage.Provider = storage.ProviderMemory
	cfg.Server.MaxBodySize = "2KB"
	cfg.ApplyDefaults()
	return cfg
}

func newTestHandler(t *testing.T, cfg *Config) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	srv := server.New(cfg.Server, logger.NewNop())
	Mount(srv, store, cfg, nil, nil, logger.NewNop())
	return srv.Handler(), store
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder, wantOrigin string) {
	t.Helper()
	assert.Equal(t, wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

// ----------------------------------------------------------------------------
// Config
// ----------------------------------------------------------------------------

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, ServiceName, cfg.Name)
	assert.Equal(t, "uploads/", cfg.KeyPrefix)
	assert.Equal(t, storage.DefaultProvider, cfg.Storage.Provider)
	assert.Equal(t, server.DefaultPort, cfg.Server.Port)
	assert.Empty(t, cfg.Origins())
	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateJoinsSections(t *testing.T) {
	cfg := Config{PublicURL: "not a url"}
	cfg.ApplyDefaults()
	cfg.Storage.Provider = storage.ProviderS3
	cfg.Server.Port = 70000

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"public_url", "storage.s3.bucket is required", "port"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("STORAGE_PROVIDER", "memory")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KEY_PREFIX", "media/")

	dir := t.TempDir()
	var cfg Config
	require.NoError(t, config.LoadConfig(ServiceName, &cfg,
		config.WithEnvFile(filepath.Join(dir, "missing.env")),
	))
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, "from-env", cfg.Policy().AuthSecret)
	assert.Equal(t, "media/", cfg.Policy().KeyPrefix)
	assert.Equal(t, storage.ProviderMemory, cfg.Storage.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestConfig_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: edge-files
environment: production
auth_secret: yaml-secret
public_url: https://files.example.com
storage:
  provider: s3
  s3:
    bucket: media
    endpoint: https://acct.r2.cloudflarestorage.com
    path_style: true
server:
  max_body_size: 50MB
`), 0o600))

	var cfg Config
	require.NoError(t, config.LoadConfig(ServiceName, &cfg, config.WithConfigFile(path)))
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "edge-files", cfg.Name)
	assert.Equal(t, "media", cfg.Storage.Bucket())
	assert.True(t, cfg.Storage.S3.PathStyle)
	assert.Equal(t, int64(50*1000*1000), cfg.Server.MaxBodyBytes())
	assert.Equal(t, "https://files.example.com", cfg.Policy().PublicURL)
}

// ----------------------------------------------------------------------------
// Full handler
// ----------------------------------------------------------------------------

func TestHandler_Preflight(t *testing.T) {
	h, store := newTestHandler(t, testConfig())

	for _, path := range []string{"/upload", "/file/x", "/anything/at/all"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://admin.example.com")
		rec := serve(h, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Empty(t, rec.Body.String())
		assertCORS(t, rec, "https://admin.example.com")
	}
	assert.Zero(t, store.Len())
}

func TestHandler_CORSOnEveryResponse(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	unauthorized := httptest.NewRequest(http.MethodGet, "/list", nil)
	unauthorized.Header.Set("Origin", "https://evil.example.com")
	rec := serve(h, unauthorized)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertCORS(t, rec, "https://app.example.com")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	assertCORS(t, rec, "https://app.example.com")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/file/missing", nil))
	assert.JSONEq(t, `{"error":"File not found"}`, rec.Body.String())
	assertCORS(t, rec, "https://app.example.com")
}

func TestHandler_WildcardOriginEchoes(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = "*"
	h, _ := newTestHandler(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anyone.example")
	assertCORS(t, serve(h, req), "https://anyone.example")
}

func TestHandler_UploadThenDownload(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	req := uploadRequest(t, "notes.txt", "hello world")
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^uploads/\d+_[0-9a-f]{8}\.txt$`, resp.Key)

	path := strings.TrimPrefix(resp.URL, "http://example.com")
	rec = serve(h, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h, store := newTestHandler(t, testConfig())

	req := uploadRequest(t, "big.bin", strings.Repeat("x", 8*1024))
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := serve(h, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"File too large"}`, rec.Body.String())
	assert.Zero(t, store.Len())
}

func TestHandler_HealthAndVersion(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, PathHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health endpoint.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.AuthEnabled)
	assert.Equal(t, ServiceName, health.Service)

	rec = serve(h, httptest.NewRequest(http.MethodGet, PathVersion, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestNewHandler_MemoryBackend(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Provider = storage.ProviderMemory
	h, err := NewHandler(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)

	rec := serve(h, uploadRequest(t, "a.txt", "a"))
	assert.Equal(t, http.StatusOK, rec.Code, "no secret means no auth")
}

func TestNewHandler_InvalidConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Provider = "ftp"
	_, err := NewHandler(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}

// ----------------------------------------------------------------------------
// Lifecycle
// ----------------------------------------------------------------------------

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestNew_RunTask(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)

	var summary bytes.Buffer
	a, err := New(cfg, bootstrap.WithLogger(logger.NewNop()), bootstrap.WithSummaryOutput(&summary))
	require.NoError(t, err)

	err = a.RunTask(context.Background(), func(ctx context.Context) error {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Server.Port, PathHealth))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var health endpoint.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK || health.Status != "healthy" {
			return fmt.Errorf("health = %d %+v", resp.StatusCode, health)
		}
		if len(health.Components) != 4 {
			return fmt.Errorf("components = %+v", health.Components)
		}
		return nil
	})
	require.NoError(t, err)

	out := summary.String()
	assert.Contains(t, out, "provider=memory")
	assert.Contains(t, out, "auth=bearer")
	assert.Contains(t, out, "/upload")
	assert.Contains(t, out, "[auth]")
}
