package counter

import (
	"fmt"
	"iter"

	c "github.com/d0ngw/counters/common"
	"github.com/d0ngw/counters/lock"
	"go.uber.org/atomic"
)

// StripedStore keeps the cells in plain maps partitioned by a lock.Striped pool.
// Reads take the stripe's read lock, writes take its write lock, and every
// keyed operation runs inside the global lock's shared side.
type StripedStore[C any] struct {
	global  *lock.Global
	stripes *lock.Striped[C]
	resizer *lock.Resizer
	count   atomic.Int64
	ops     cellOps[C]
}

// StripedMapStore keeps HolderCell values under striped locks
type StripedMapStore = StripedStore[*HolderCell]

// NewStripedMapStore create new StripedMapStore
func NewStripedMapStore(opts ...Option) (*StripedMapStore, error) {
	return newStripedStore[*HolderCell](holderOps{}, opts...)
}

// NewStripedAtomicStore create a striped store of AtomicCell
func NewStripedAtomicStore(opts ...Option) (*StripedStore[*AtomicCell], error) {
	return newStripedStore[*AtomicCell](atomicOps{}, opts...)
}

// NewStripedValueStore create a striped store which re-inserts the value on every increment
func NewStripedValueStore(opts ...Option) (*StripedStore[int64], error) {
	return newStripedStore[int64](valueOps{}, opts...)
}

func newStripedStore[C any](ops cellOps[C], opts ...Option) (*StripedStore[C], error) {
	o := buildOptions(opts)
	store := &StripedStore[C]{
		global: &lock.Global{},
		ops:    ops,
	}
	stripes, err := lock.NewStriped[C](store.global, store.Size, o.stripeConf)
	if err != nil {
		return nil, err
	}
	store.stripes = stripes
	if !o.resize {
		return store, nil
	}

	conf := stripes.Config()
	resizer, err := lock.NewResizer(fmt.Sprintf("%T", store), stripes, conf.Period)
	if err != nil {
		return nil, err
	}
	if !c.ServiceInit(resizer) || !c.ServiceStart(resizer) {
		return nil, fmt.Errorf("start resizer of %T fail", store)
	}
	store.resizer = resizer
	return store, nil
}

// FindByName implements Store
func (p *StripedStore[C]) FindByName(name string) (counter Counter, ok bool) {
	p.global.Reading(func() {
		stripe := p.stripes.Get(name)
		stripe.RLock()
		defer stripe.RUnlock()
		var cell C
		if cell, ok = stripe.Get(name); ok {
			counter = Counter{Name: name, Value: p.ops.load(cell)}
		}
	})
	return
}

// Create implements Store
func (p *StripedStore[C]) Create(name string, value int64) (counter Counter, ok bool) {
	p.global.Reading(func() {
		stripe := p.stripes.Get(name)
		stripe.Lock()
		defer stripe.Unlock()
		if _, exist := stripe.Get(name); exist {
			return
		}
		stripe.Put(name, p.ops.newCell(value))
		p.count.Inc()
		counter, ok = Counter{Name: name, Value: value}, true
	})
	return
}

// Increment implements Store
func (p *StripedStore[C]) Increment(name string) (counter Counter, ok bool, err error) {
	p.global.Reading(func() {
		stripe := p.stripes.Get(name)
		stripe.Lock()
		defer stripe.Unlock()
		var cell C
		if cell, ok = stripe.Get(name); !ok {
			return
		}
		cell, v, incErr := p.ops.increment(cell)
		if incErr != nil {
			err = overflow(name)
			return
		}
		stripe.Put(name, cell)
		counter = Counter{Name: name, Value: v}
	})
	return
}

// Delete implements Store
func (p *StripedStore[C]) Delete(name string) (counter Counter, ok bool) {
	p.global.Reading(func() {
		stripe := p.stripes.Get(name)
		stripe.Lock()
		defer stripe.Unlock()
		var cell C
		if cell, ok = stripe.Remove(name); ok {
			p.count.Dec()
			counter = Counter{Name: name, Value: p.ops.load(cell)}
		}
	})
	return
}

// FindAll implements Store
func (p *StripedStore[C]) FindAll() iter.Seq[Counter] {
	var snapshot map[string]C
	p.global.Writing(func() {
		snapshot = make(map[string]C, p.Size())
		p.stripes.Range(func(name string, cell C) {
			snapshot[name] = p.ops.detach(cell)
		})
	})
	return snapshotSeq(snapshot, p.ops)
}

// Size implements Store
func (p *StripedStore[C]) Size() int {
	return int(p.count.Load())
}

// Stripes returns the lock pool of the store
func (p *StripedStore[C]) Stripes() *lock.Striped[C] {
	return p.stripes
}

// ResizeAsNeeded runs one resize cycle of the lock pool
func (p *StripedStore[C]) ResizeAsNeeded() bool {
	return p.stripes.ResizeAsNeeded()
}

// Close stops the resizer of the store
func (p *StripedStore[C]) Close() error {
	if p.resizer == nil {
		return nil
	}
	if !c.ServiceStop(p.resizer) {
		return fmt.Errorf("stop resizer %s fail", p.resizer.Name())
	}
	return nil
}
