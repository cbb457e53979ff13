package common

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownHook(t *testing.T) {
	shook := NewShutdownhook()
	var called []int
	shook.AddHook(func() {
		called = append(called, 1)
	})
	shook.AddHook(func() {
		called = append(called, 2)
	})

	go func() {
		time.Sleep(time.Duration(100) * time.Millisecond)
		shook.ch <- syscall.SIGINT
	}()
	shook.WaitShutdown()
	assert.Equal(t, []int{1, 2}, called)
}

func TestHasNil(t *testing.T) {
	var p *int
	var f func()
	var m map[string]int
	assert.True(t, HasNil(nil))
	assert.True(t, HasNil(1, p))
	assert.True(t, HasNil(f))
	assert.True(t, HasNil("a", m))

	v := 1
	assert.False(t, HasNil(&v, "a", 1, func() {}, map[string]int{}))
	assert.False(t, HasNil())
}

func TestFnv32Hashcode(t *testing.T) {
	assert.Equal(t, Fnv32Hashcode("counter"), Fnv32Hashcode("counter"))
	assert.NotEqual(t, Fnv32Hashcode("a"), Fnv32Hashcode("b"))
	for _, s := range []string{"", "a", "counter-1", "一个计数器"} {
		assert.True(t, Fnv32Hashcode(s) >= 0)
	}
}
