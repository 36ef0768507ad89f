package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testStorage struct {
	Provider string `mapstructure:"provider"`
	S3Bucket string `mapstructure:"s3_bucket"`
}

type testConfig struct {
	ServiceConfig  `mapstructure:",squash"`
	AllowedOrigins string      `mapstructure:"allowed_origins"`
	AuthSecret     string      `mapstructure:"auth_secret"`
	Storage        testStorage `mapstructure:"storage"`
	Port           int         `mapstructure:"port"`
}

// mockFS reports only the listed paths as existing.
type mockFS struct {
	files   map[string]bool
	loaded  []string
	loadErr error
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return m.loadErr
}

// ---------------------------------------------------------------------------
// ServiceConfig
// ---------------------------------------------------------------------------

func TestServiceConfig_ApplyDefaults(t *testing.T) {
	cfg := ServiceConfig{Name: "fileproxy"}
	cfg.ApplyDefaults()
	if cfg.Environment != "development" || !cfg.Debug {
		t.Errorf("expected development+debug, got %q debug=%v", cfg.Environment, cfg.Debug)
	}
	if cfg.Logging.ServiceName != "fileproxy" {
		t.Errorf("logging service name = %q", cfg.Logging.ServiceName)
	}

	prod := ServiceConfig{Name: "fileproxy", Environment: "production"}
	prod.ApplyDefaults()
	if prod.Debug {
		t.Error("production should not force debug")
	}
}

func TestServiceConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config: name is required"},
		{"bad environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config: environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Fatalf("expected error containing %q, got %v", tc.errMsg, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

func TestEnvKeyVariants(t *testing.T) {
	got := EnvKeyVariants("STORAGE_S3_BUCKET")
	for _, want := range []string{"storage_s3_bucket", "storage.s3.bucket", "storage.s3_bucket", "storage_s3.bucket"} {
		if !slices.Contains(got, want) {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if got := EnvKeyVariants("PORT"); len(got) != 1 || got[0] != "port" {
		t.Errorf("single word variants = %v", got)
	}
}

func TestLeafKeys(t *testing.T) {
	keys := LeafKeys(&testConfig{})
	for _, want := range []string{"name", "logging.level", "allowed_origins", "auth_secret", "storage.provider", "storage.s3_bucket", "port"} {
		if !keys[want] {
			t.Errorf("missing leaf %q in %v", want, keys)
		}
	}
	if keys["storage"] {
		t.Error("struct fields are not leaves")
	}
}

func TestResolve_PrefersExplicitThenCandidates(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		filepath.Join("cmd", "fileproxy", "config.yml"): true,
		".env": true,
	}}
	files := Resolve("fileproxy", LoaderConfig{FileSystem: fs})
	if files.ConfigFile != filepath.Join("cmd", "fileproxy", "config.yml") {
		t.Errorf("config file = %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("env file = %q", files.EnvFile)
	}

	files = Resolve("fileproxy", LoaderConfig{FileSystem: fs, ConfigFile: "custom.yml"})
	if files.ConfigFile != "custom.yml" {
		t.Errorf("explicit config file ignored: %q", files.ConfigFile)
	}
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
name: fileproxy
allowed_origins: "https://yaml.example"
storage:
  provider: local
port: 8080
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("AUTH_SECRET_FILE", "/ignored")
	t.Setenv("STORAGE_S3_BUCKET", "media")
	t.Setenv("PORT", "9090")

	var cfg testConfig
	if err := LoadConfig("fileproxy", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Name != "fileproxy" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.AllowedOrigins != "https://yaml.example" {
		t.Errorf("allowed_origins = %q", cfg.AllowedOrigins)
	}
	if cfg.AuthSecret != "s3cret" {
		t.Errorf("auth_secret = %q", cfg.AuthSecret)
	}
	if cfg.Storage.Provider != "local" || cfg.Storage.S3Bucket != "media" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Port != 9090 {
		t.Errorf("env should override yaml port, got %d", cfg.Port)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("fileproxy", &cfg,
		WithFileSystem(&mockFS{files: map[string]bool{}}),
		WithDefaults(map[string]any{"storage.provider": "memory", "name": "fileproxy"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Provider != "memory" {
		t.Errorf("default provider = %q", cfg.Storage.Provider)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("fileproxy", &cfg, WithConfigFile(filepath.Join(t.TempDir(), "nope.yml")))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
