package di

import "github.com/wulawulu/tdd-di/validation"

// Config tunes the scopes a registry installs by default.
type Config struct {
	// UnguardedSingletons installs the lock-free singleton scope. Only safe
	// when contexts are used from a single goroutine.
	UnguardedSingletons bool `yaml:"unguarded_singletons" mapstructure:"unguarded_singletons"`
	// PoolSize installs the Pooled scope with this many instances per binding.
	// Zero leaves Pooled unregistered.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0,lte=1024"`
}

// ApplyDefaults applies default values to container configuration.
func (c *Config) ApplyDefaults() {
	if c.PoolSize < 0 {
		c.PoolSize = 0
	}
}

// Validate validates container configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
