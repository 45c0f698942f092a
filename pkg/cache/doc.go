// Package cache provides an in-memory, byte-bounded store for HTTP
// validators and resource bodies.
//
// Each key (a resource identifier) maps to a fixed set of fields: the
// ETag and Last-Modified validators, the body, and the body fingerprint.
// Only value bytes count toward the budget; when an insertion would reach
// the configured maximum, whole entries are evicted in least-recently-used
// order until the new value fits. Both reads and writes count as usage.
//
// # Basic Usage
//
//	// Create a cache with a 200 KiB budget
//	c, err := cache.New(200 * 1024)
//	if err != nil {
//		return err
//	}
//
//	// Store validators and body for a resource
//	c.Set("/images/logo.png", cache.FieldETag, []byte(`"abc123"`))
//	c.Set("/images/logo.png", cache.FieldBody, body)
//
//	// Read them back
//	etag, ok := c.Get("/images/logo.png", cache.FieldETag)
//
// # Accounting
//
// An entry's accounted size is the sum of the byte lengths of its present
// fields, and eviction recovers exactly that sum. Overwriting a field
// subtracts the old length before adding the new one, so repeated writes
// do not leak accounted space. Empty values are never stored.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - fetchcache_cache_hits_total / fetchcache_cache_misses_total
//   - fetchcache_cache_evictions_total / fetchcache_cache_evicted_bytes_total
//   - fetchcache_cache_bytes / fetchcache_cache_entries
//
// # Concurrency
//
// Cache performs no internal locking. A Cache shared across goroutines
// must be guarded by the caller; the evict-then-insert sequence in Set is
// not atomic on its own.
package cache
