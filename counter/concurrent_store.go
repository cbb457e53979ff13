package counter

import (
	"iter"

	"github.com/d0ngw/counters/lock"
	"github.com/puzpuzpuz/xsync/v3"
)

// ConcurrentStore keeps the cells in a lock-free concurrent map.
// Keyed operations share the global lock, FindAll copies the map holding it exclusively.
type ConcurrentStore[C any] struct {
	global  lock.Global
	storage *xsync.MapOf[string, C]
	ops     cellOps[C]
}

// AtomicMapStore keeps AtomicCell references in a concurrent map
type AtomicMapStore = ConcurrentStore[*AtomicCell]

// NewAtomicMapStore create new AtomicMapStore
func NewAtomicMapStore() *AtomicMapStore {
	return newConcurrentStore[*AtomicCell](atomicOps{})
}

// NewConcurrentValueStore create a concurrent map store which re-inserts the value on every increment
func NewConcurrentValueStore() *ConcurrentStore[int64] {
	return newConcurrentStore[int64](valueOps{})
}

func newConcurrentStore[C any](ops cellOps[C]) *ConcurrentStore[C] {
	return &ConcurrentStore[C]{
		storage: xsync.NewMapOf[string, C](),
		ops:     ops,
	}
}

// FindByName implements Store
func (p *ConcurrentStore[C]) FindByName(name string) (counter Counter, ok bool) {
	p.global.Reading(func() {
		var cell C
		if cell, ok = p.storage.Load(name); ok {
			counter = Counter{Name: name, Value: p.ops.load(cell)}
		}
	})
	return
}

// Create implements Store
func (p *ConcurrentStore[C]) Create(name string, value int64) (counter Counter, ok bool) {
	p.global.Reading(func() {
		if _, loaded := p.storage.LoadOrStore(name, p.ops.newCell(value)); !loaded {
			counter, ok = Counter{Name: name, Value: value}, true
		}
	})
	return
}

// Increment implements Store
func (p *ConcurrentStore[C]) Increment(name string) (counter Counter, ok bool, err error) {
	p.global.Reading(func() {
		p.storage.Compute(name, func(old C, loaded bool) (C, bool) {
			if !loaded {
				return old, true
			}
			ok = true
			cell, v, incErr := p.ops.increment(old)
			if incErr != nil {
				err = overflow(name)
				return old, false
			}
			counter = Counter{Name: name, Value: v}
			return cell, false
		})
	})
	return
}

// Delete implements Store
func (p *ConcurrentStore[C]) Delete(name string) (counter Counter, ok bool) {
	p.global.Reading(func() {
		var cell C
		if cell, ok = p.storage.LoadAndDelete(name); ok {
			counter = Counter{Name: name, Value: p.ops.load(cell)}
		}
	})
	return
}

// FindAll implements Store
func (p *ConcurrentStore[C]) FindAll() iter.Seq[Counter] {
	var snapshot map[string]C
	p.global.Writing(func() {
		snapshot = make(map[string]C, p.storage.Size())
		p.storage.Range(func(name string, cell C) bool {
			snapshot[name] = p.ops.detach(cell)
			return true
		})
	})
	return snapshotSeq(snapshot, p.ops)
}

// Size implements Store
func (p *ConcurrentStore[C]) Size() int {
	return p.storage.Size()
}

// Close implements Store
func (p *ConcurrentStore[C]) Close() error {
	return nil
}

func snapshotSeq[C any](snapshot map[string]C, ops cellOps[C]) iter.Seq[Counter] {
	return func(yield func(Counter) bool) {
		for name, cell := range snapshot {
			if !yield(Counter{Name: name, Value: ops.load(cell)}) {
				return
			}
		}
	}
}
