package lock

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	c "github.com/d0ngw/counters/common"
	"go.uber.org/atomic"
)

// Resizable is resized periodically by a Resizer
type Resizable interface {
	ResizeAsNeeded() bool
}

// Resizer runs ResizeAsNeeded of its target every period in one background goroutine
type Resizer struct {
	c.BaseService
	target   Resizable
	period   time.Duration
	stopChan chan struct{}
	stop     atomic.Bool
	cycles   atomic.Int64
	wg       sync.WaitGroup
}

// NewResizer create new Resizer
func NewResizer(name string, target Resizable, period time.Duration) (*Resizer, error) {
	if c.HasNil(target) || period <= 0 {
		return nil, errors.New("invalid params")
	}
	return &Resizer{
		BaseService: c.BaseService{SName: name},
		target:      target,
		period:      period,
		stopChan:    make(chan struct{}),
	}, nil
}

// Init implements Initable
func (p *Resizer) Init() error {
	if c.HasNil(p.target) || p.period <= 0 {
		return errors.New("invalid target or period")
	}
	return nil
}

// Start launches the resize goroutine
func (p *Resizer) Start() bool {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		c.Infof("start resizer %s,period:%s", p.Name(), p.period)
		for !p.stop.Load() {
			timer := time.NewTimer(p.period)
			select {
			case <-timer.C:
				p.runCycle()
			case <-p.stopChan:
			}
			timer.Stop()
		}
		c.Infof("resizer %s exit", p.Name())
	}()
	return true
}

// Stop signals the resize goroutine and waits for it to exit
func (p *Resizer) Stop() bool {
	if p.stop.CompareAndSwap(false, true) {
		close(p.stopChan)
	}
	p.wg.Wait()
	return true
}

// Cycles returns the number of finished resize cycles
func (p *Resizer) Cycles() int64 {
	return p.cycles.Load()
}

func (p *Resizer) runCycle() {
	defer p.cycles.Inc()
	defer func() {
		if r := recover(); r != nil {
			c.Errorf("resizer %s cycle panic:%v\n%s", p.Name(), r, debug.Stack())
		}
	}()
	if p.target.ResizeAsNeeded() {
		c.Debugf("resizer %s resized %s", p.Name(), describe(p.target))
	}
}

func describe(target Resizable) string {
	if s, ok := target.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", target)
}
