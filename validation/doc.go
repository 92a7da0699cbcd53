// Package validation checks configuration values and reports failures as
// INVALID_INPUT errors.
//
// Struct tags are the usual route:
//
//	type Config struct {
//	    PoolSize int `mapstructure:"pool_size" validate:"gte=0,lte=1024"`
//	}
//	err := validation.Validate(cfg)
//
// For rules that do not fit in a tag, collect errors by hand:
//
//	v := validation.New()
//	v.OneOf("logging.level", cfg.Level, levels)
//	err := v.Err()
package validation
