package editdist

import (
	farm "github.com/dgryski/go-farm"
)

// DefaultCacheEntries is the default capacity of a Cache.
const DefaultCacheEntries = 1 << 16

type cacheKey struct {
	text, pattern uint64
	textLen       int32
	patternLen    int32
	k             int32
}

// Cache memoizes Distance results. Phase engines of one cluster aligner share
// a Cache, so the same reference window scored for several reads of a barcode
// is computed once. A Cache is not thread safe; each worker owns its own.
type Cache struct {
	maxEntries int
	entries    map[cacheKey]int
	rows       rows

	calls, hits int64
}

// NewCache creates a cache that holds at most maxEntries results. When full,
// the cache is cleared wholesale.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &Cache{
		maxEntries: maxEntries,
		entries:    make(map[cacheKey]int, maxEntries),
	}
}

// Distance is the cached form of the package-level Distance.
func (c *Cache) Distance(text, pattern []byte, k int) int {
	c.calls++
	if len(text) > len(pattern)+k {
		text = text[:len(pattern)+k]
	}
	key := cacheKey{
		text:       farm.Hash64(text),
		pattern:    farm.Hash64(pattern),
		textLen:    int32(len(text)),
		patternLen: int32(len(pattern)),
		k:          int32(k),
	}
	if d, ok := c.entries[key]; ok {
		c.hits++
		return d
	}
	d := c.rows.distance(text, pattern, k)
	if len(c.entries) >= c.maxEntries {
		c.entries = make(map[cacheKey]int, c.maxEntries)
	}
	c.entries[key] = d
	return d
}

// Reset drops all cached results. Counters are preserved.
func (c *Cache) Reset() {
	c.entries = make(map[cacheKey]int, c.maxEntries)
}

// Len returns the number of cached results.
func (c *Cache) Len() int { return len(c.entries) }

// Calls returns the number of Distance calls made through the cache.
func (c *Cache) Calls() int64 { return c.calls }

// Hits returns the number of Distance calls answered from the cache.
func (c *Cache) Hits() int64 { return c.hits }
