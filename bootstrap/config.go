package bootstrap

import "github.com/kbukum/fileproxy/config"

// Config is satisfied by any struct embedding config.ServiceConfig:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Storage storage.Config `yaml:"storage" mapstructure:"storage"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
