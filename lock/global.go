// Package lock supply the coordination primitives shared by the counter stores:
// a global reader/writer lock and a self-resizing pool of striped locks.
package lock

import (
	"sync"
)

// Global coordinates keyed operations with whole-store operations.
//
// Keyed operations run inside Reading and may proceed concurrently with each
// other. Snapshot copies and stripe resizes run inside Writing: at most one of
// them runs at a time and never while any Reading action is in flight.
type Global struct {
	mu sync.RWMutex
}

// Reading runs action holding the shared side of the lock
func (p *Global) Reading(action func()) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	action()
}

// Writing runs action holding the exclusive side of the lock
func (p *Global) Writing(action func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	action()
}
