package lock

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

const (
	// DefaultMinSize the minimum stripe count of a pool
	DefaultMinSize = 128
	// DefaultMaxSize the maximum stripe count of a pool
	DefaultMaxSize = 1 << 16
	// DefaultPeriod the period of the background resize cycle
	DefaultPeriod = 60 * time.Second
)

// StripeConfig configures a Striped pool and its Resizer
type StripeConfig struct {
	MinSize int           `yaml:"min_size"`
	MaxSize int           `yaml:"max_size"`
	Period  time.Duration `yaml:"period"`
}

// DefaultStripeConfig returns the default stripe config
func DefaultStripeConfig() *StripeConfig {
	return &StripeConfig{
		MinSize: DefaultMinSize,
		MaxSize: DefaultMaxSize,
		Period:  DefaultPeriod,
	}
}

// Parse implements common.Configurer, unset fields take the default values
func (p *StripeConfig) Parse() (err error) {
	if p.MinSize == 0 {
		p.MinSize = DefaultMinSize
	}
	if p.MaxSize == 0 {
		p.MaxSize = max(DefaultMaxSize, p.MinSize)
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	if p.MinSize < 1 {
		err = multierr.Append(err, fmt.Errorf("stripes.min_size must be >0,got %d", p.MinSize))
	}
	if p.MaxSize < p.MinSize {
		err = multierr.Append(err, fmt.Errorf("stripes.max_size %d must be >= min_size %d", p.MaxSize, p.MinSize))
	}
	if p.Period < 0 {
		err = multierr.Append(err, fmt.Errorf("stripes.period must be >0,got %s", p.Period))
	}
	return
}
