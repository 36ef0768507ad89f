package server

import (
	"github.com/kbukum/fileproxy/security"
	"github.com/kbukum/fileproxy/util"
	"github.com/kbukum/fileproxy/validation"
)

// Defaults. Timeouts are generous because uploads and downloads stream
// whole objects through a single request.
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 300 // seconds
	DefaultWriteTimeout    = 300 // seconds
	DefaultIdleTimeout     = 60  // seconds
	DefaultMaxBodySize     = "100MB"
	DefaultMultipartMemory = "32MB"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" validate:"min=0"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" validate:"min=0"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"min=0"`   // seconds
	// MaxBodySize caps request bodies, e.g. "100MB". "0" disables the cap.
	MaxBodySize string `yaml:"max_body_size" mapstructure:"max_body_size"`
	// MultipartMemory is how much of an upload is held in memory before
	// spilling to a temporary file.
	MultipartMemory string `yaml:"multipart_memory" mapstructure:"multipart_memory"`
	// TLS serves HTTPS when a certificate is configured; otherwise the
	// listener speaks cleartext HTTP/1.1 and h2c.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.MultipartMemory == "" {
		c.MultipartMemory = DefaultMultipartMemory
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Struct("server", c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// MaxBodyBytes returns the body cap in bytes; 0 means unlimited.
func (c *Config) MaxBodyBytes() int64 {
	return util.ParseSize(c.MaxBodySize, util.ParseSize(DefaultMaxBodySize, 0))
}

// MultipartMemoryBytes returns the in-memory multipart budget in bytes.
func (c *Config) MultipartMemoryBytes() int64 {
	return util.ParseSize(c.MultipartMemory, util.ParseSize(DefaultMultipartMemory, 0))
}
