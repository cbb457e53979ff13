package lock

import (
	"errors"
	"fmt"
	"sync"

	c "github.com/d0ngw/counters/common"
	"go.uber.org/atomic"
)

const (
	growLoadFactor   = 0.75
	shrinkLoadFactor = 0.25
)

// Stripe is one lock of a Striped pool together with the entries whose keys hash to it.
// Items may only be touched while holding the stripe's lock.
type Stripe[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func newStripe[V any]() *Stripe[V] {
	return &Stripe[V]{items: make(map[string]V)}
}

// Lock acquires the stripe for writing
func (s *Stripe[V]) Lock() { s.mu.Lock() }

// Unlock releases the write lock
func (s *Stripe[V]) Unlock() { s.mu.Unlock() }

// RLock acquires the stripe for reading
func (s *Stripe[V]) RLock() { s.mu.RLock() }

// RUnlock releases the read lock
func (s *Stripe[V]) RUnlock() { s.mu.RUnlock() }

// Get returns the entry of key
func (s *Stripe[V]) Get(key string) (v V, ok bool) {
	v, ok = s.items[key]
	return
}

// Put sets the entry of key
func (s *Stripe[V]) Put(key string, v V) {
	s.items[key] = v
}

// Remove deletes the entry of key and returns it
func (s *Stripe[V]) Remove(key string) (v V, ok bool) {
	v, ok = s.items[key]
	if ok {
		delete(s.items, key)
	}
	return
}

// Striped is a resizable pool of read/write locks selected by key hash.
//
// The stripe array is only read under the Global lock's shared side and only
// replaced under its exclusive side. Callers must call Get for every critical
// section and never keep a *Stripe across two Reading actions.
type Striped[V any] struct {
	global        *Global
	loadEstimator func() int
	conf          StripeConfig
	stripes       []*Stripe[V]
	size          atomic.Int64
}

// NewStriped creates a pool with conf.MinSize stripes guarded by global.
// loadEstimator reports the current entry count of the owning store.
func NewStriped[V any](global *Global, loadEstimator func() int, conf *StripeConfig) (*Striped[V], error) {
	if c.HasNil(global, loadEstimator) {
		return nil, errors.New("global and loadEstimator must not be nil")
	}
	if conf == nil {
		conf = DefaultStripeConfig()
	}
	if err := conf.Parse(); err != nil {
		return nil, err
	}
	p := &Striped[V]{
		global:        global,
		loadEstimator: loadEstimator,
		conf:          *conf,
	}
	p.stripes = newStripes[V](conf.MinSize)
	p.size.Store(int64(conf.MinSize))
	return p, nil
}

func newStripes[V any](n int) []*Stripe[V] {
	stripes := make([]*Stripe[V], n)
	for i := range stripes {
		stripes[i] = newStripe[V]()
	}
	return stripes
}

// Get returns the stripe of key, the caller must hold the global lock
func (p *Striped[V]) Get(key string) *Stripe[V] {
	return p.stripes[c.Fnv32Hashcode(key)%len(p.stripes)]
}

// Size returns the current stripe count
func (p *Striped[V]) Size() int {
	return int(p.size.Load())
}

// Config returns the effective config of the pool
func (p *Striped[V]) Config() StripeConfig {
	return p.conf
}

// Range calls fn for every entry of every stripe, the caller must hold the global lock exclusively
func (p *Striped[V]) Range(fn func(key string, v V)) {
	for _, s := range p.stripes {
		for k, v := range s.items {
			fn(k, v)
		}
	}
}

// nextSize applies the resize policy to the current stripe count and load
func (p *Striped[V]) nextSize(stripes, load int) int {
	if load <= 0 {
		return stripes
	}
	factor := float64(stripes) / float64(load)
	if factor > growLoadFactor && stripes < p.conf.MaxSize {
		return min(stripes*2, p.conf.MaxSize)
	}
	if factor < shrinkLoadFactor && stripes > p.conf.MinSize {
		return max(stripes/2, p.conf.MinSize)
	}
	return stripes
}

// ResizeAsNeeded runs one resize cycle. The pool is doubled when the ratio
// of stripe count to load is above 0.75 and halved when it is below 0.25,
// bounded by the configured minimum and maximum. A zero load skips the cycle.
func (p *Striped[V]) ResizeAsNeeded() (resized bool) {
	current := p.Size()
	load := p.loadEstimator()
	next := p.nextSize(current, load)
	if next == current {
		return false
	}

	p.global.Writing(func() {
		p.resize(next)
	})
	c.Infof("resize stripes %d -> %d,load:%d", current, next, load)
	return true
}

// resize replaces the stripe array and rehashes every entry, requires the global lock exclusively
func (p *Striped[V]) resize(n int) {
	if n == len(p.stripes) {
		return
	}
	stripes := newStripes[V](n)
	for _, old := range p.stripes {
		for k, v := range old.items {
			stripes[c.Fnv32Hashcode(k)%n].items[k] = v
		}
	}
	p.stripes = stripes
	p.size.Store(int64(n))
}

func (p *Striped[V]) String() string {
	return fmt.Sprintf("Striped{size:%d,min:%d,max:%d}", p.Size(), p.conf.MinSize, p.conf.MaxSize)
}
