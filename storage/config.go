package storage

import (
	"errors"
	"fmt"

	"github.com/kbukum/fileproxy/validation"
)

// Provider names for the registered backends.
const (
	ProviderS3       = "s3"
	ProviderSupabase = "supabase"
	ProviderLocal    = "local"
	ProviderMemory   = "memory"
)

// Defaults.
const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "./data"
	DefaultRegion   = "auto"
	DefaultTimeout  = 30 // seconds
	MaxListLimit    = 1000
)

// Config selects and configures the storage backend.
type Config struct {
	Provider string         `yaml:"provider" mapstructure:"provider" validate:"required,oneof=s3 supabase local memory"`
	S3       S3Config       `yaml:"s3" mapstructure:"s3"`
	Supabase SupabaseConfig `yaml:"supabase" mapstructure:"supabase"`
	Local    LocalConfig    `yaml:"local" mapstructure:"local"`
}

// S3Config configures an S3-compatible bucket such as Cloudflare R2.
type S3Config struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	// PathStyle forces path-style addressing, required by R2 and MinIO.
	PathStyle bool `yaml:"path_style" mapstructure:"path_style"`
}

// SupabaseConfig configures a Supabase Storage bucket.
type SupabaseConfig struct {
	URL     string `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Key     string `yaml:"key" mapstructure:"key"`
	Bucket  string `yaml:"bucket" mapstructure:"bucket"`
	Timeout int    `yaml:"timeout" mapstructure:"timeout" validate:"min=0"` // seconds
}

// LocalConfig configures on-disk storage.
type LocalConfig struct {
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
	if c.Supabase.Timeout == 0 {
		c.Supabase.Timeout = DefaultTimeout
	}
	if c.Local.BasePath == "" {
		c.Local.BasePath = DefaultBasePath
	}
}

// Validate checks struct rules and the settings the selected provider needs.
func (c *Config) Validate() error {
	if err := validation.Struct("storage", c); err != nil {
		return err
	}
	var errs []error
	switch c.Provider {
	case ProviderS3:
		if c.S3.Bucket == "" {
			errs = append(errs, fmt.Errorf("storage.s3.bucket is required"))
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, fmt.Errorf("storage.s3.access_key and storage.s3.secret_key must be set together"))
		}
	case ProviderSupabase:
		if c.Supabase.URL == "" {
			errs = append(errs, fmt.Errorf("storage.supabase.url is required"))
		}
		if c.Supabase.Key == "" {
			errs = append(errs, fmt.Errorf("storage.supabase.key is required"))
		}
		if c.Supabase.Bucket == "" {
			errs = append(errs, fmt.Errorf("storage.supabase.bucket is required"))
		}
	case ProviderLocal:
		if c.Local.BasePath == "" {
			errs = append(errs, fmt.Errorf("storage.local.base_path is required"))
		}
	}
	return errors.Join(errs...)
}

// Bucket returns the bucket or directory the selected provider writes to.
func (c *Config) Bucket() string {
	switch c.Provider {
	case ProviderS3:
		return c.S3.Bucket
	case ProviderSupabase:
		return c.Supabase.Bucket
	case ProviderLocal:
		return c.Local.BasePath
	}
	return ""
}
