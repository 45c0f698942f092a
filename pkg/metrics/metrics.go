// Package metrics documents the Prometheus metrics exported by fetchcache.
// Metrics are defined next to the code that maintains them (pkg/cache,
// pkg/fetcher) to keep the packages self-contained; this package holds the
// registry reference and the catalogue.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Prometheus registry used by fetchcache. All metrics are
// registered via promauto in their owning packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Catalogue
//
// Cache (pkg/cache):
//   - fetchcache_cache_hits_total (Counter): field lookups answered from cache
//   - fetchcache_cache_misses_total (Counter): unknown keys or absent fields
//   - fetchcache_cache_evictions_total (Counter): LRU evictions
//   - fetchcache_cache_evicted_bytes_total (Counter): bytes recovered by eviction
//   - fetchcache_cache_bytes (Gauge): bytes currently accounted against the budget
//   - fetchcache_cache_entries (Gauge): cached resource keys
//
// Fetcher (pkg/fetcher):
//   - fetchcache_requests_total{resource, status} (Counter)
//   - fetchcache_request_duration_seconds{resource} (Histogram)
//   - fetchcache_errors_total{class} (Counter): client, server, network
//   - fetchcache_conditional_requests_total (Counter)
//   - fetchcache_not_modified_total (Counter): 304 responses served from cache
//
// Example queries:
//
//   # Share of fetches answered without re-downloading the body
//   rate(fetchcache_not_modified_total[5m]) / rate(fetchcache_requests_total[5m])
//
//   # Cache pressure
//   fetchcache_cache_bytes / on() group_left() fetchcache_cache_entries
//
//   # Eviction churn
//   rate(fetchcache_cache_evicted_bytes_total[5m])
