package common

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyOnWriteMap(t *testing.T) {
	m := NewCopyOnWriteMap[string, int]()
	m.Put("a", 1)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Error(t, m.PutIfAbsent("a", 2))
	v, _ = m.Get("a")
	assert.Equal(t, 1, v)

	assert.NoError(t, m.PutIfAbsent("b", 2))
	assert.Equal(t, 2, m.Len())

	m.Delete("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestCopyOnWriteMapConcurrent(t *testing.T) {
	m := NewCopyOnWriteMap[string, int]()
	wg := sync.WaitGroup{}
	count := 50
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(i int) {
			defer wg.Done()
			key := strconv.Itoa(i)
			assert.NoError(t, m.PutIfAbsent(key, i))
			v, ok := m.Get(key)
			assert.True(t, ok)
			assert.Equal(t, i, v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, count, m.Len())
}
