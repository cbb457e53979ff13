package lock

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func newTestStriped(t *testing.T, load *atomic.Int64, conf *StripeConfig) (*Global, *Striped[int]) {
	global := &Global{}
	striped, err := NewStriped[int](global, func() int { return int(load.Load()) }, conf)
	require.NoError(t, err)
	return global, striped
}

func TestStripeConfigParse(t *testing.T) {
	conf := &StripeConfig{}
	assert.NoError(t, conf.Parse())
	assert.Equal(t, DefaultMinSize, conf.MinSize)
	assert.Equal(t, DefaultMaxSize, conf.MaxSize)
	assert.Equal(t, DefaultPeriod, conf.Period)

	conf = &StripeConfig{MinSize: 8, MaxSize: 4, Period: -time.Second}
	err := conf.Parse()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_size")
	assert.Contains(t, err.Error(), "period")

	conf = &StripeConfig{MinSize: -1, MaxSize: 4}
	assert.Error(t, conf.Parse())
}

func TestNewStriped(t *testing.T) {
	_, err := NewStriped[int](nil, func() int { return 0 }, nil)
	assert.Error(t, err)
	_, err = NewStriped[int](&Global{}, nil, nil)
	assert.Error(t, err)

	var load atomic.Int64
	_, striped := newTestStriped(t, &load, nil)
	assert.Equal(t, DefaultMinSize, striped.Size())
	assert.Equal(t, DefaultMinSize, striped.Config().MinSize)
}

func TestStripedGet(t *testing.T) {
	var load atomic.Int64
	global, striped := newTestStriped(t, &load, &StripeConfig{MinSize: 4, MaxSize: 16})

	global.Reading(func() {
		s := striped.Get("a")
		assert.Same(t, s, striped.Get("a"))

		s.Lock()
		s.Put("a", 1)
		s.Unlock()

		s = striped.Get("a")
		s.RLock()
		v, ok := s.Get("a")
		s.RUnlock()
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		s.Lock()
		v, ok = s.Remove("a")
		_, again := s.Remove("a")
		s.Unlock()
		assert.True(t, ok)
		assert.False(t, again)
		assert.Equal(t, 1, v)
	})
}

func TestStripedResizePolicy(t *testing.T) {
	var load atomic.Int64
	_, striped := newTestStriped(t, &load, &StripeConfig{MinSize: 4, MaxSize: 16})

	// empty store: skip
	assert.False(t, striped.ResizeAsNeeded())
	assert.Equal(t, 4, striped.Size())

	// 4/5 = 0.8 > 0.75: double
	load.Store(5)
	assert.True(t, striped.ResizeAsNeeded())
	assert.Equal(t, 8, striped.Size())

	// 8/16 = 0.5: unchanged
	load.Store(16)
	assert.False(t, striped.ResizeAsNeeded())
	assert.Equal(t, 8, striped.Size())

	// 8/40 = 0.2 < 0.25: halve
	load.Store(40)
	assert.True(t, striped.ResizeAsNeeded())
	assert.Equal(t, 4, striped.Size())

	// never below the minimum
	load.Store(1000)
	assert.False(t, striped.ResizeAsNeeded())
	assert.Equal(t, 4, striped.Size())

	// grows up to the maximum and stops
	load.Store(1)
	for i := 0; i < 10; i++ {
		striped.ResizeAsNeeded()
	}
	assert.Equal(t, 16, striped.Size())
	assert.False(t, striped.ResizeAsNeeded())
}

func TestStripedResizeKeepsEntries(t *testing.T) {
	var load atomic.Int64
	global, striped := newTestStriped(t, &load, &StripeConfig{MinSize: 4, MaxSize: 64})

	const n = 100
	global.Reading(func() {
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("k%d", i)
			s := striped.Get(key)
			s.Lock()
			s.Put(key, i)
			s.Unlock()
		}
	})
	load.Store(n)

	// 4/100 < 0.25 but already at the minimum
	assert.False(t, striped.ResizeAsNeeded())

	load.Store(5)
	for striped.ResizeAsNeeded() {
	}
	assert.Equal(t, 64, striped.Size())

	global.Reading(func() {
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("k%d", i)
			s := striped.Get(key)
			s.RLock()
			v, ok := s.Get(key)
			s.RUnlock()
			assert.True(t, ok, key)
			assert.Equal(t, i, v)
		}
	})

	count := 0
	global.Writing(func() {
		striped.Range(func(key string, v int) {
			count++
		})
	})
	assert.Equal(t, n, count)
}
