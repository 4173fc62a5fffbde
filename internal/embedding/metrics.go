package embedding

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cacheMetrics holds Prometheus collectors for cache activity. A nil
// *cacheMetrics is valid and makes every recording method a no-op, so the
// cache never branches on whether metrics are enabled.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	puts      prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

// WithMetrics registers cache metrics with reg, labeled by component so
// several caches can share a registry. Registration conflicts panic, as is
// usual for promauto; pass each (registry, component) pair once.
func WithMetrics(reg prometheus.Registerer, component string) CacheOption {
	return func(c *Cache) {
		c.metrics = newCacheMetrics(reg, component)
	}
}

func newCacheMetrics(reg prometheus.Registerer, component string) *cacheMetrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"component": component}
	return &cacheMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "checklist_matcher",
			Subsystem:   "embedding_cache",
			Name:        "hits_total",
			ConstLabels: labels,
			Help:        "Total number of embedding cache hits",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "checklist_matcher",
			Subsystem:   "embedding_cache",
			Name:        "misses_total",
			ConstLabels: labels,
			Help:        "Total number of embedding cache misses",
		}),
		puts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "checklist_matcher",
			Subsystem:   "embedding_cache",
			Name:        "puts_total",
			ConstLabels: labels,
			Help:        "Total number of embedding cache writes",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "checklist_matcher",
			Subsystem:   "embedding_cache",
			Name:        "evictions_total",
			ConstLabels: labels,
			Help:        "Total number of embeddings evicted by the batch policy",
		}),
		size: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "checklist_matcher",
			Subsystem:   "embedding_cache",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of cached embeddings",
		}),
	}
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) put(size int) {
	if m != nil {
		m.puts.Inc()
		m.size.Set(float64(size))
	}
}

func (m *cacheMetrics) evict(n int) {
	if m != nil {
		m.evictions.Add(float64(n))
	}
}

func (m *cacheMetrics) setSize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
