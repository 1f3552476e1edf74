package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics records hit rates for the in-process lookup caches.
type CacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits",
		Help: "Lookups served from an in-process cache.",
	}, []string{"cache"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses",
		Help: "Lookups that fell through to the database.",
	}, []string{"cache"})
	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_invalidations",
		Help: "Explicit cache invalidations triggered by writes.",
	}, []string{"cache"})
	reg.MustRegister(hits, misses, invalidations)
	return &CacheMetrics{
		hits:          hits,
		misses:        misses,
		invalidations: invalidations,
	}
}

// IncHit increments the hit counter for the named cache.
func (c *CacheMetrics) IncHit(cache string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncMiss increments the miss counter for the named cache.
func (c *CacheMetrics) IncMiss(cache string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncInvalidation increments the invalidation counter for the named cache.
func (c *CacheMetrics) IncInvalidation(cache string) {
	if c == nil || c.invalidations == nil {
		return
	}
	c.invalidations.WithLabelValues(normalizeLabel(cache)).Inc()
}

func normalizeLabel(cache string) string {
	if cache == "" {
		return "unknown"
	}
	return cache
}
