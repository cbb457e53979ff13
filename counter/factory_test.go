package counter

import (
	"errors"
	"testing"
	"time"

	c "github.com/d0ngw/counters/common"
	"github.com/d0ngw/counters/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(string(kind))
		assert.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	kind, err := ParseKind("")
	assert.NoError(t, err)
	assert.Equal(t, ConcurrentAtomic, kind)

	kind, err = ParseKind(" Striped-Holder ")
	assert.NoError(t, err)
	assert.Equal(t, StripedHolder, kind)

	_, err = ParseKind("concurrent-holder")
	assert.True(t, errors.Is(err, ErrInvalidKind))
}

func TestNew(t *testing.T) {
	_, err := New("redis")
	assert.True(t, errors.Is(err, ErrInvalidKind))

	store, err := New(StripedHolder, WithStripeConfig(&lock.StripeConfig{MinSize: 8, MaxSize: 4}))
	assert.Error(t, err)
	assert.Nil(t, store)

	store, err = New(ConcurrentAtomic)
	require.NoError(t, err)
	assert.IsType(t, &AtomicMapStore{}, store)
	assert.NoError(t, store.Close())
}

func TestStoreConfig(t *testing.T) {
	conf := &StoreConfig{}
	assert.NoError(t, conf.Parse())
	assert.Equal(t, DefaultKind, conf.GetKind())

	conf = &StoreConfig{Kind: "striped-value"}
	assert.NoError(t, conf.Parse())
	assert.Equal(t, StripedValue, conf.GetKind())

	conf = &StoreConfig{Kind: "unknown"}
	assert.Error(t, conf.Parse())
}

func TestStripedStoreResizer(t *testing.T) {
	store, err := NewStripedMapStore(WithStripeConfig(&lock.StripeConfig{MinSize: 2, MaxSize: 16, Period: time.Millisecond}))
	require.NoError(t, err)
	require.NotNil(t, store.resizer)
	assert.Equal(t, c.RUNNING, store.resizer.State())

	store.Create("a", 1)
	assert.Eventually(t, func() bool { return store.Stripes().Size() == 16 }, time.Second, time.Millisecond)

	counter, ok := store.FindByName("a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), counter.Value)

	assert.NoError(t, store.Close())
	assert.Equal(t, c.TERMINATED, store.resizer.State())
	assert.NoError(t, store.Close())
}

func TestStripedStoreResizeKeepsCounters(t *testing.T) {
	store, err := NewStripedMapStore(WithStripeConfig(&lock.StripeConfig{MinSize: 4, MaxSize: 64}), WithoutResizer())
	require.NoError(t, err)
	defer store.Close()

	for _, name := range []string{"a", "b", "c"} {
		store.Create(name, 1)
	}
	for store.Stripes().ResizeAsNeeded() {
	}
	assert.Equal(t, 64, store.Stripes().Size())

	for i := 0; i < 100; i++ {
		store.Create(string(rune('d'+i)), int64(i))
	}
	// 64/103 < 0.75 and > 0.25
	assert.False(t, store.Stripes().ResizeAsNeeded())

	counter, ok, err := store.Increment("b")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), counter.Value)
	assert.Equal(t, 103, store.Size())
	assert.Len(t, collect(store), 103)
}
