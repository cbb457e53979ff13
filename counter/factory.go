package counter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d0ngw/counters/lock"
)

// Kind selects the mapping and the cell type of a Store
type Kind string

const (
	// ConcurrentAtomic AtomicCell references in a concurrent map
	ConcurrentAtomic Kind = "concurrent-atomic"
	// ConcurrentValue int64 values in a concurrent map
	ConcurrentValue Kind = "concurrent-value"
	// StripedHolder HolderCell values in striped maps
	StripedHolder Kind = "striped-holder"
	// StripedAtomic AtomicCell references in striped maps
	StripedAtomic Kind = "striped-atomic"
	// StripedValue int64 values in striped maps
	StripedValue Kind = "striped-value"
	// DefaultKind the kind used when none is configured
	DefaultKind = ConcurrentAtomic
)

// ErrInvalidKind is returned for an unknown store kind
var ErrInvalidKind = errors.New("invalid store kind")

// Kinds returns all store kinds
func Kinds() []Kind {
	return []Kind{ConcurrentAtomic, ConcurrentValue, StripedHolder, StripedAtomic, StripedValue}
}

// ParseKind parses s to Kind, an empty s is the DefaultKind
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultKind, nil
	}
	for _, kind := range Kinds() {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

type options struct {
	stripeConf *lock.StripeConfig
	resize     bool
}

// Option configures the striped stores
type Option func(*options)

// WithStripeConfig sets the config of the stripe pool
func WithStripeConfig(conf *lock.StripeConfig) Option {
	return func(o *options) {
		o.stripeConf = conf
	}
}

// WithoutResizer disables the background resizer, the pool is only resized by ResizeAsNeeded
func WithoutResizer() Option {
	return func(o *options) {
		o.resize = false
	}
}

func buildOptions(opts []Option) *options {
	o := &options{resize: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New create a Store of kind
func New(kind Kind, opts ...Option) (store Store, err error) {
	switch kind {
	case ConcurrentAtomic:
		store = NewAtomicMapStore()
	case ConcurrentValue:
		store = NewConcurrentValueStore()
	case StripedHolder:
		store, err = asStore(NewStripedMapStore(opts...))
	case StripedAtomic:
		store, err = asStore(NewStripedAtomicStore(opts...))
	case StripedValue:
		store, err = asStore(NewStripedValueStore(opts...))
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return
}

func asStore[C any](store *StripedStore[C], err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}

// StoreConfig the store config
type StoreConfig struct {
	Kind string `yaml:"kind"`
	kind Kind
}

// Parse implements common.Configurer
func (p *StoreConfig) Parse() (err error) {
	p.kind, err = ParseKind(p.Kind)
	return
}

// GetKind returns the parsed kind
func (p *StoreConfig) GetKind() Kind {
	if p.kind == "" {
		return DefaultKind
	}
	return p.kind
}
