// Package counter supply in-memory stores of named int64 counters
package counter

import (
	"errors"
	"iter"
)

// ErrOverflow is returned when a counter at math.MaxInt64 is incremented
var ErrOverflow = errors.New("counter overflow")

// Counter is the value of a named counter at the moment it was read
type Counter struct {
	Name  string
	Value int64
}

// Release the counter, returning it to the store is a no-op
func (p Counter) Release() {}

// Store is a concurrent mapping from counter name to counter value.
//
// Absent names and duplicate creations are reported by ok == false, never
// by an error. Every keyed operation is linearizable with respect to the
// other keyed operations on the same name.
type Store interface {
	// FindByName returns the counter of name
	FindByName(name string) (counter Counter, ok bool)
	// Create creates the counter name with value, ok is false if name already exists
	Create(name string, value int64) (counter Counter, ok bool)
	// Increment adds one to the counter name and returns the new value.
	// At math.MaxInt64 the counter is left unchanged and the error wraps ErrOverflow.
	Increment(name string) (counter Counter, ok bool, err error)
	// Delete removes the counter name and returns its last value
	Delete(name string) (counter Counter, ok bool)
	// FindAll copies the store and returns a sequence over the copy
	FindAll() iter.Seq[Counter]
	// Size returns the number of counters
	Size() int
	// Close releases the background resources of the store
	Close() error
}
