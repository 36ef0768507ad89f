package observability

import (
	"time"

	"github.com/kbukum/fileproxy/validation"
)

// Defaults.
const (
	DefaultEndpoint   = "localhost:4318"
	DefaultSampleRate = 1.0
	DefaultInterval   = 15 * time.Second
)

// Config enables OTLP/HTTP export of traces and metrics. When Enabled is
// false spans go to the no-op global provider and no metrics are recorded.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"min=0"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	return validation.Struct("observability", c)
}
