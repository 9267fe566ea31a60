package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheGetStore(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute, 10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Store("a", 1)
	value, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	c.Store("a", 2)
	value, _ = c.Get("a")
	assert.Equal(t, 2, value)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int](10*time.Millisecond, 10)
	c.Store("a", 1)

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entries are dropped on read")
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute, 10)
	c.Store("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheBoundsSize(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute, 5)
	for i := 0; i < 20; i++ {
		c.Store(fmt.Sprintf("key-%d", i), i)
	}
	assert.LessOrEqual(t, c.Len(), 5)
}
