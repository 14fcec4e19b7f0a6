package names

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := newTTLCache("test", 20*time.Millisecond, 10)
	c.set("k", "v")

	v, ok := c.get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.get("k")
	assert.False(t, ok)
}

func TestTTLCacheEvictsOldestInserted(t *testing.T) {
	c := newTTLCache("test", time.Minute, 3)
	for i := 0; i < 3; i++ {
		c.set(fmt.Sprintf("k%d", i), "v")
		time.Sleep(time.Millisecond)
	}
	// k0 is re-read but eviction ignores access time: insertion order rules.
	_, ok := c.get("k0")
	require.True(t, ok)

	c.set("k3", "v")
	assert.Equal(t, 3, c.len())
	_, ok = c.get("k0")
	assert.False(t, ok)
	_, ok = c.get("k1")
	assert.True(t, ok)
}

func TestTTLCacheOverwriteDoesNotEvict(t *testing.T) {
	c := newTTLCache("test", time.Minute, 2)
	c.set("a", "1")
	time.Sleep(time.Millisecond)
	c.set("b", "2")
	time.Sleep(time.Millisecond)
	c.set("a", "3")

	assert.Equal(t, 2, c.len())
	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = c.get("b")
	assert.True(t, ok)
}

func TestTTLCacheStats(t *testing.T) {
	c := newTTLCache("test", time.Minute, 10)
	c.set("k", "v")
	c.get("k")
	c.get("missing")

	hits, misses := c.stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
