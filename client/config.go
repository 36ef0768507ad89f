package client

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/fileproxy/resilience"
	"github.com/kbukum/fileproxy/security"
)

const defaultTimeout = 5 * time.Minute

// Config configures the client.
type Config struct {
	// BaseURL is the proxy origin, e.g. https://files.example.com.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Secret is sent as a bearer token when set.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Timeout bounds a whole request including the body transfer. Defaults to 5m.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Retry applies to idempotent calls only; uploads are sent once.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	TLS   security.TLSConfig     `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	c.Retry.ApplyDefaults()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("client: base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("client: base_url %q is not an absolute URL", c.BaseURL)
	}
	return c.TLS.Validate()
}
