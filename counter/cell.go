package counter

import (
	"fmt"
	"math"

	"go.uber.org/atomic"
)

// AtomicCell is an int64 counter cell updated by compare-and-swap
type AtomicCell struct {
	v atomic.Int64
}

// NewAtomicCell create new AtomicCell
func NewAtomicCell(value int64) *AtomicCell {
	cell := &AtomicCell{}
	cell.v.Store(value)
	return cell
}

// Load returns the current value
func (p *AtomicCell) Load() int64 {
	return p.v.Load()
}

// CompareAndSwap sets the value to new if it equals old
func (p *AtomicCell) CompareAndSwap(old, new int64) bool {
	return p.v.CompareAndSwap(old, new)
}

// Increment adds one and returns the new value, fails with ErrOverflow at math.MaxInt64
func (p *AtomicCell) Increment() (int64, error) {
	for {
		current := p.v.Load()
		if current == math.MaxInt64 {
			return current, ErrOverflow
		}
		if p.v.CompareAndSwap(current, current+1) {
			return current + 1, nil
		}
	}
}

func (p *AtomicCell) String() string {
	return fmt.Sprintf("%d", p.Load())
}

// HolderCell is a mutable int64 holder, only safe under an external lock
type HolderCell struct {
	Value int64
}

// cellOps describes how the value of a counter is kept in a mapping entry
type cellOps[C any] interface {
	newCell(value int64) C
	load(cell C) int64
	// increment returns the cell to keep in the mapping and the new value
	increment(cell C) (C, int64, error)
	// detach returns a cell which may be read after the store's locks are released
	detach(cell C) C
}

type atomicOps struct{}

func (atomicOps) newCell(value int64) *AtomicCell { return NewAtomicCell(value) }

func (atomicOps) load(cell *AtomicCell) int64 { return cell.Load() }

func (atomicOps) increment(cell *AtomicCell) (*AtomicCell, int64, error) {
	v, err := cell.Increment()
	return cell, v, err
}

// detach keeps the reference, the snapshot reads the live value lazily
func (atomicOps) detach(cell *AtomicCell) *AtomicCell { return cell }

type holderOps struct{}

func (holderOps) newCell(value int64) *HolderCell { return &HolderCell{Value: value} }

func (holderOps) load(cell *HolderCell) int64 { return cell.Value }

func (holderOps) increment(cell *HolderCell) (*HolderCell, int64, error) {
	if cell.Value == math.MaxInt64 {
		return cell, cell.Value, ErrOverflow
	}
	cell.Value++
	return cell, cell.Value, nil
}

func (holderOps) detach(cell *HolderCell) *HolderCell { return &HolderCell{Value: cell.Value} }

type valueOps struct{}

func (valueOps) newCell(value int64) int64 { return value }

func (valueOps) load(cell int64) int64 { return cell }

func (valueOps) increment(cell int64) (int64, int64, error) {
	if cell == math.MaxInt64 {
		return cell, cell, ErrOverflow
	}
	return cell + 1, cell + 1, nil
}

func (valueOps) detach(cell int64) int64 { return cell }

func overflow(name string) error {
	return fmt.Errorf("increment %q: %w", name, ErrOverflow)
}
