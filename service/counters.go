// Package service supply the counters service over a counter.Store
package service

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	c "github.com/d0ngw/counters/common"
	"github.com/d0ngw/counters/counter"
)

// NameRule the validate rule of counter names
const NameRule = "counter_name"

// DefaultValidateRuleConfig returns the default validate rules of the service
func DefaultValidateRuleConfig() *c.ValidateRuleConfig {
	return &c.ValidateRuleConfig{
		SName: "counters",
		Rules: []c.RuleConfig{
			{
				Name: NameRule,
				Desc: "counter name must have 1 to 256 characters",
				Validators: []map[string]string{
					{"name": c.VNOTEMPTY},
					{"name": c.VSTRLEN, "min": "1", "max": "256"},
				},
			},
		},
	}
}

// Counters validates the requests and maps the absent results of the store to errors
type Counters struct {
	c.BaseService
	store     counter.Store
	validator c.ValidateService
}

// NewCounters create new Counters
func NewCounters(store counter.Store, validator c.ValidateService) *Counters {
	return &Counters{
		BaseService: c.BaseService{SName: "counters", Order: 1},
		store:       store,
		validator:   validator,
	}
}

// Init implements Initable
func (p *Counters) Init() error {
	if c.HasNil(p.store, p.validator) {
		return errors.New("store and validator must not be nil")
	}
	return nil
}

// Stop closes the store
func (p *Counters) Stop() bool {
	if err := p.store.Close(); err != nil {
		c.Errorf("close store fail,err:%v", err)
		return false
	}
	return true
}

// Create creates the counter name with value
func (p *Counters) Create(name string, value int64) (counter.Counter, error) {
	if name == "" {
		return counter.Counter{}, newError(IllegalName, nil, "Illegal counter name '%s'.", name)
	}
	illegal := fmt.Sprintf("Illegal counter name '%s'.", name)
	if err := c.ValidateAll(p.validator, c.NewValidatePairMsg(NameRule, name, illegal)); err != nil {
		return counter.Counter{}, newError(IllegalName, err, "%s", illegal)
	}
	created, ok := p.store.Create(name, value)
	if !ok {
		return counter.Counter{}, newError(DuplicateName, nil, "Counter with name '%s' already exists.", name)
	}
	c.Debugf("create counter %s,value:%d", name, value)
	return created, nil
}

// Get returns the counter name
func (p *Counters) Get(name string) (counter.Counter, error) {
	found, ok := p.store.FindByName(name)
	if !ok {
		return counter.Counter{}, notFound(name)
	}
	return found, nil
}

// Increment adds one to the counter name
func (p *Counters) Increment(name string) (counter.Counter, error) {
	incremented, ok, err := p.store.Increment(name)
	if err != nil {
		if errors.Is(err, counter.ErrOverflow) {
			return counter.Counter{}, newError(Overflow, err, "Counter '%s' can not be incremented without overflowing.", name)
		}
		return counter.Counter{}, AsError(err)
	}
	if !ok {
		return counter.Counter{}, notFound(name)
	}
	return incremented, nil
}

// Delete removes the counter name and returns its last value
func (p *Counters) Delete(name string) (counter.Counter, error) {
	deleted, ok := p.store.Delete(name)
	if !ok {
		return counter.Counter{}, notFound(name)
	}
	c.Debugf("delete counter %s,value:%d", name, deleted.Value)
	return deleted, nil
}

// Sum returns the sum of all counter values
func (p *Counters) Sum() *big.Int {
	sum := new(big.Int)
	v := new(big.Int)
	for cnt := range p.store.FindAll() {
		sum.Add(sum, v.SetInt64(cnt.Value))
	}
	return sum
}

// Names returns the sorted names of all counters
func (p *Counters) Names() []string {
	names := make([]string, 0, p.store.Size())
	for cnt := range p.store.FindAll() {
		names = append(names, cnt.Name)
	}
	sort.Strings(names)
	return names
}

func notFound(name string) *Error {
	return newError(NotFound, nil, "Counter with name '%s' does not exist.", name)
}
