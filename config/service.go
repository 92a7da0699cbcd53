package config

import (
	"github.com/wulawulu/tdd-di/di"
	"github.com/wulawulu/tdd-di/logger"
	"github.com/wulawulu/tdd-di/observability"
	"github.com/wulawulu/tdd-di/validation"
)

var validEnvironments = []string{"development", "staging", "production", "test"}

// ServiceConfig is the configuration of a service that assembles its
// components with a di.Registry. Embed it in a larger struct with
// `mapstructure:",squash"` to add application settings.
type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Container     di.Config            `yaml:"container" mapstructure:"container"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields and copies the service identity into the
// logging and observability sections.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Container.ApplyDefaults()

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate validates the service config and every section in it. Call
// ApplyDefaults first.
func (c *ServiceConfig) Validate() error {
	if err := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, validEnvironments).
		Err(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Container.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// Load reads the configuration of serviceName, applies defaults and validates it.
func Load(serviceName string, opts ...LoaderOption) (*ServiceConfig, error) {
	cfg := &ServiceConfig{Name: serviceName}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetServiceConfig returns c. Structs embedding ServiceConfig get it promoted,
// which lets bootstrap reach the shared sections of any application config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}
