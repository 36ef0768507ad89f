package config

import (
	"fmt"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/validation"
)

// ServiceConfig is the identity block shared by every binary. Embed it with
// `mapstructure:",squash"` so name, environment and logging sit at the top
// level of the file.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig lets embedding configs satisfy bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }

// ApplyDefaults assumes development, which also turns on debug.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Debug = c.Debug || c.Environment == "development"
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

func (c *ServiceConfig) Validate() error {
	if err := validation.Struct("config", c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
