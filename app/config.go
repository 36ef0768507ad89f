package app

import (
	"errors"
	"fmt"

	"github.com/kbukum/fileproxy/config"
	"github.com/kbukum/fileproxy/observability"
	"github.com/kbukum/fileproxy/proxy"
	"github.com/kbukum/fileproxy/server"
	"github.com/kbukum/fileproxy/storage"
	"github.com/kbukum/fileproxy/util"
	"github.com/kbukum/fileproxy/validation"
)

// ServiceName is the default service name and config file stem.
const ServiceName = "fileproxy"

// Config is the full proxy configuration. Every leaf can be set from the
// environment: ALLOWED_ORIGINS, AUTH_SECRET, STORAGE_PROVIDER, SERVER_PORT...
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`

	// AllowedOrigins is a comma-separated CORS allow-list; "*" echoes any origin.
	AllowedOrigins string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// AuthSecret is the bearer token for mutating routes. Empty disables auth.
	AuthSecret string `yaml:"auth_secret" mapstructure:"auth_secret"`
	// PublicURL overrides the origin used in returned object URLs.
	PublicURL string `yaml:"public_url" mapstructure:"public_url" validate:"omitempty,url"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.KeyPrefix == "" {
		c.KeyPrefix = proxy.DefaultKeyPrefix
	}
}

// Validate checks every section and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ServiceConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observability: %w", err))
	}
	if err := validation.Struct("config", &struct {
		PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`
	}{c.PublicURL}); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Origins returns the parsed CORS allow-list.
func (c *Config) Origins() []string {
	return util.SplitList(c.AllowedOrigins)
}

// Policy returns the immutable per-request view of the configuration.
func (c *Config) Policy() proxy.Policy {
	return proxy.Policy{
		AuthSecret: c.AuthSecret,
		PublicURL:  c.PublicURL,
		KeyPrefix:  c.KeyPrefix,
	}
}
