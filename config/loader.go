package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file lookups so tests can fake them.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the host filesystem.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and explicit file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	Defaults   map[string]any
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithDefaults seeds viper defaults, keyed by dotted config path.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// ResolvedFiles contains the config and env files that will be read.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolve picks the config and env files for a service. Explicit paths win;
// otherwise the first existing candidate is used.
func Resolve(serviceName string, lc LoaderConfig) ResolvedFiles {
	fs := lc.FileSystem
	if fs == nil {
		fs = RealFileSystem{}
	}
	files := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(fs, []string{
			filepath.Join("cmd", serviceName, "config.yml"),
			filepath.Join("config", "config.yml"),
			"config.yml",
		})
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(fs, []string{
			".env." + serviceName,
			filepath.Join("cmd", serviceName, ".env"),
			".env",
		})
	}
	return files
}

func firstExisting(fs FileSystem, candidates []string) string {
	for _, p := range candidates {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig loads configuration for serviceName into cfg. Sources in
// increasing precedence: defaults, YAML file, .env file, process environment.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}
	files := Resolve(serviceName, lc)

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return fmt.Errorf("config file %s not found", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	// godotenv never overrides variables already present in the environment.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", files.EnvFile, err)
		}
	}

	bindEnv(v, os.Environ(), LeafKeys(cfg))

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each of its key variants that
// names a leaf of the target struct. Unknown variables are ignored so an
// unrelated AUTH_SECRET_FILE cannot turn auth_secret into a map.
func bindEnv(v *viper.Viper, environ []string, leaves map[string]bool) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range EnvKeyVariants(key) {
			if leaves[variant] {
				v.Set(variant, value)
			}
		}
	}
}

// LeafKeys returns the dotted mapstructure paths of every non-struct field
// reachable from cfg. Squashed embeds contribute their fields at the
// embedding level.
func LeafKeys(cfg interface{}) map[string]bool {
	keys := map[string]bool{}
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		collectKeys(t, "", keys)
	}
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if strings.Contains(opts, "squash") && ft.Kind() == reflect.Struct {
			collectKeys(ft, prefix, keys)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			collectKeys(ft, path, keys)
			continue
		}
		keys[path] = true
	}
}

// EnvKeyVariants lists the config keys an environment variable may address.
//
//	STORAGE_S3_BUCKET -> storage_s3_bucket, storage.s3.bucket,
//	                     storage.s3_bucket, storage_s3.bucket
func EnvKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "."))
	}
	return out
}
