package cache

import (
	"container/list"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidBudget indicates a non-positive byte budget was supplied
	// at construction. Budget errors fail fast, never at runtime.
	ErrInvalidBudget = errors.New("cache byte budget must be positive")
)

// Cache is an in-memory key -> entry store bounded by a total byte budget.
// Only value bytes count toward the budget; keys are assumed small next to
// resource bodies. When an insertion would reach the budget, the least
// recently used key is evicted wholesale (all its fields together).
//
// Cache is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves: the evict-then-insert
// sequence inside Set is not atomic.
type Cache struct {
	entries map[string]*Entry

	// recency holds keys most-recently-used first; index maps a key to
	// its list element for O(1) move-to-front and removal.
	recency *list.List
	index   map[string]*list.Element

	maxBytes     int64
	currentBytes int64

	logger zerolog.Logger
}

// New creates an empty cache with the given byte budget.
// Returns ErrInvalidBudget if maxBytes is zero or negative.
func New(maxBytes int64) (*Cache, error) {
	if maxBytes <= 0 {
		return nil, ErrInvalidBudget
	}
	return &Cache{
		entries:  make(map[string]*Entry),
		recency:  list.New(),
		index:    make(map[string]*list.Element),
		maxBytes: maxBytes,
		logger:   log.With().Str("component", "cache").Logger(),
	}, nil
}

// Set inserts or overwrites the value stored under (key, field).
//
// An empty or nil value is a silent no-op: absent values are never stored
// and never consume budget. A value at least as large as the whole budget
// is rejected (logged) rather than evicting every other key for nothing.
// Otherwise eviction runs until the value fits, the value is stored, and
// the key becomes most-recently-used.
func (c *Cache) Set(key string, field Field, value []byte) {
	if len(value) == 0 {
		return
	}
	if int64(len(value)) >= c.maxBytes {
		c.logger.Warn().
			Str("key", key).
			Str("field", field.String()).
			Int("value_bytes", len(value)).
			Int64("max_bytes", c.maxBytes).
			Msg("Value exceeds cache budget, not cached")
		return
	}

	// Make room first. The key being written may itself be the LRU and
	// get evicted here; the insert below then recreates it.
	for c.currentBytes+int64(len(value)) >= c.maxBytes {
		if !c.evictLRU() {
			break
		}
	}

	entry, ok := c.entries[key]
	if !ok {
		entry = &Entry{}
		c.entries[key] = entry
	}
	c.currentBytes += entry.set(field, value)
	c.touch(key)

	cacheBytes.Set(float64(c.currentBytes))
	cacheEntries.Set(float64(len(c.entries)))
}

// Get returns the value stored under (key, field). A hit counts as usage
// and moves the key to the most-recently-used position; a miss leaves the
// recency order untouched.
func (c *Cache) Get(key string, field Field) ([]byte, bool) {
	entry, ok := c.entries[key]
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	value := entry.get(field)
	if value == nil {
		cacheMisses.Inc()
		return nil, false
	}
	c.touch(key)
	cacheHits.Inc()
	return value, true
}

// Clear removes all entries and resets the byte accounting.
func (c *Cache) Clear() {
	c.entries = make(map[string]*Entry)
	c.recency.Init()
	c.index = make(map[string]*list.Element)
	c.currentBytes = 0

	cacheBytes.Set(0)
	cacheEntries.Set(0)
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	return len(c.entries)
}

// CurrentBytes returns the bytes currently accounted against the budget.
func (c *Cache) CurrentBytes() int64 {
	return c.currentBytes
}

// MaxBytes returns the byte budget fixed at construction.
func (c *Cache) MaxBytes() int64 {
	return c.maxBytes
}

// touch moves key to the most-recently-used position.
func (c *Cache) touch(key string) {
	if elem, ok := c.index[key]; ok {
		c.recency.MoveToFront(elem)
		return
	}
	c.index[key] = c.recency.PushFront(key)
}

// evictLRU removes the least-recently-used key and all its fields,
// recovering its accounted bytes. Returns false if the cache is empty.
func (c *Cache) evictLRU() bool {
	tail := c.recency.Back()
	if tail == nil {
		return false
	}
	key := tail.Value.(string)

	recovered := int64(0)
	if entry, ok := c.entries[key]; ok {
		recovered = entry.size()
	}
	delete(c.entries, key)
	c.recency.Remove(tail)
	delete(c.index, key)
	c.currentBytes -= recovered

	cacheEvictions.Inc()
	cacheEvictedBytes.Add(float64(recovered))
	c.logger.Info().
		Str("key", key).
		Int64("bytes_recovered", recovered).
		Int64("current_bytes", c.currentBytes).
		Msg("Evicted least-recently-used entry")

	return true
}
