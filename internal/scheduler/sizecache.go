package scheduler

import "sync"

// sizeEntry records one probe outcome. A failed probe is cached as
// unavailable so the URL is never automatically retried.
type sizeEntry struct {
	url   string
	bytes int64
	known bool
}

// SizeCache is an insertion-ordered cache of probe results. On overflow the
// oldest fifth of the entries is evicted in one sweep, which keeps eviction
// cost amortized instead of per-insert. It is safe for concurrent use:
// enrichment workers write results in parallel, and overlapping batches
// share one cache per page context.
type SizeCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]sizeEntry
}

// NewSizeCache builds a cache holding at most capacity entries.
func NewSizeCache(capacity int) *SizeCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &SizeCache{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		entries:  make(map[string]sizeEntry, capacity),
	}
}

// Lookup returns (bytes, known, cached). cached=false means the URL has never
// been probed; known=false with cached=true means the probe failed before and
// must not be retried.
func (c *SizeCache) Lookup(url string) (bytes int64, known, cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return 0, false, false
	}
	return e.bytes, e.known, true
}

// StoreSize records a successful probe result.
func (c *SizeCache) StoreSize(url string, bytes int64) {
	c.store(sizeEntry{url: url, bytes: bytes, known: true})
}

// StoreUnavailable records a failed probe so it is not retried.
func (c *SizeCache) StoreUnavailable(url string) {
	c.store(sizeEntry{url: url, known: false})
}

func (c *SizeCache) store(e sizeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[e.url]; !exists {
		if len(c.order) >= c.capacity {
			c.evictOldest()
		}
		c.order = append(c.order, e.url)
	}
	c.entries[e.url] = e
}

func (c *SizeCache) evictOldest() {
	n := c.capacity / 5
	if n < 1 {
		n = 1
	}
	for _, url := range c.order[:n] {
		delete(c.entries, url)
	}
	c.order = append(c.order[:0], c.order[n:]...)
}

// Len returns the number of cached entries.
func (c *SizeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Clear drops all entries.
func (c *SizeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.entries = make(map[string]sizeEntry, c.capacity)
}
