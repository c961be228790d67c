package querycache

import (
	"github.com/prometheus/client_golang/prometheus"

	"hrmportal/internal/platform/metrics"
)

type cacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fetches       prometheus.Counter
	errors        prometheus.Counter
	discarded     prometheus.Counter
	invalidations prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	counter := func(name, help string) prometheus.Counter {
		return metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrm",
			Subsystem: "querycache",
			Name:      name,
			Help:      help,
		}))
	}
	return &cacheMetrics{
		hits:          counter("hits_total", "Reads served from a fresh entry."),
		misses:        counter("misses_total", "Reads that needed a fetch."),
		fetches:       counter("fetches_total", "Fetches started."),
		errors:        counter("fetch_errors_total", "Fetches that failed."),
		discarded:     counter("discarded_results_total", "Fetch results dropped because the key was invalidated meanwhile."),
		invalidations: counter("invalidations_total", "Entries invalidated."),
	}
}
