package scheduler

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeCacheHitAndMiss(t *testing.T) {
	c := NewSizeCache(10)

	_, _, cached := c.Lookup("https://a.example.com/v.mp4")
	assert.False(t, cached)

	c.StoreSize("https://a.example.com/v.mp4", 4096)
	bytes, known, cached := c.Lookup("https://a.example.com/v.mp4")
	assert.True(t, cached)
	assert.True(t, known)
	assert.Equal(t, int64(4096), bytes)
}

func TestSizeCacheFailureCachedAsUnavailable(t *testing.T) {
	c := NewSizeCache(10)

	c.StoreUnavailable("https://a.example.com/v.mp4")
	_, known, cached := c.Lookup("https://a.example.com/v.mp4")
	assert.True(t, cached, "failure is remembered so the url is not retried")
	assert.False(t, known)
}

func TestSizeCacheEvictsOldestFifth(t *testing.T) {
	c := NewSizeCache(100)
	for i := 0; i < 100; i++ {
		c.StoreSize(fmt.Sprintf("https://cdn.example.com/v/%03d.mp4", i), int64(i))
	}
	assert.Equal(t, 100, c.Len())

	// The 101st insert evicts the oldest 20 entries.
	c.StoreSize("https://cdn.example.com/v/100.mp4", 100)
	assert.Equal(t, 81, c.Len())

	_, _, cached := c.Lookup("https://cdn.example.com/v/000.mp4")
	assert.False(t, cached, "oldest entry evicted")
	_, _, cached = c.Lookup("https://cdn.example.com/v/019.mp4")
	assert.False(t, cached, "entry 19 is inside the evicted fifth")
	_, _, cached = c.Lookup("https://cdn.example.com/v/020.mp4")
	assert.True(t, cached, "entry 20 survives")
	_, _, cached = c.Lookup("https://cdn.example.com/v/100.mp4")
	assert.True(t, cached)
}

func TestSizeCacheUpdateDoesNotGrowOrder(t *testing.T) {
	c := NewSizeCache(10)
	c.StoreUnavailable("https://a.example.com/v.mp4")
	c.StoreSize("https://a.example.com/v.mp4", 1)
	assert.Equal(t, 1, c.Len())

	bytes, known, _ := c.Lookup("https://a.example.com/v.mp4")
	assert.True(t, known)
	assert.Equal(t, int64(1), bytes)
}

func TestSizeCacheClear(t *testing.T) {
	c := NewSizeCache(10)
	c.StoreSize("https://a.example.com/v.mp4", 1)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, _, cached := c.Lookup("https://a.example.com/v.mp4")
	assert.False(t, cached)
}

func TestSizeCacheConcurrentWriters(t *testing.T) {
	c := NewSizeCache(1000)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				url := fmt.Sprintf("https://cdn.example.com/v/%03d.mp4", i)
				if w%2 == 0 {
					c.StoreSize(url, int64(i))
				} else {
					c.Lookup(url)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Len())
	bytes, known, cached := c.Lookup("https://cdn.example.com/v/007.mp4")
	assert.True(t, cached)
	assert.True(t, known)
	assert.Equal(t, int64(7), bytes)
}
