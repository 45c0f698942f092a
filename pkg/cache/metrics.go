package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks field lookups answered from the cache.
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchcache_cache_hits_total",
			Help: "Total number of cache field hits",
		},
	)

	// cacheMisses tracks lookups for unknown keys or absent fields.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchcache_cache_misses_total",
			Help: "Total number of cache field misses",
		},
	)

	// cacheEvictions tracks LRU evictions under byte pressure.
	cacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchcache_cache_evictions_total",
			Help: "Total number of least-recently-used evictions",
		},
	)

	// cacheEvictedBytes tracks bytes recovered by eviction.
	cacheEvictedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchcache_cache_evicted_bytes_total",
			Help: "Total bytes recovered by cache evictions",
		},
	)

	// cacheBytes tracks bytes currently accounted against the budget.
	cacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fetchcache_cache_bytes",
			Help: "Current cache size in value bytes",
		},
	)

	// cacheEntries tracks the number of cached keys.
	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fetchcache_cache_entries",
			Help: "Current number of cached resource keys",
		},
	)
)
