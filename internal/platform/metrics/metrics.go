package metrics

import (
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts HTTP exchanges. The server records inbound requests with
// it and the API client records outbound ones; both feed the same Prometheus
// series shape under different subsystems.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge

	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
}

// New builds a collector and registers its series on reg. A nil reg keeps
// the series private, which is what tests want.
func New(reg prometheus.Registerer, namespace, subsystem string) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
	}
	if reg != nil {
		c.requests = Register(reg, c.requests)
		c.duration = Register(reg, c.duration)
		c.inFlight = Register(reg, c.inFlight)
	}
	return c
}

// Register adds col to reg, reusing an identical collector that is already
// registered.
func Register[T prometheus.Collector](reg prometheus.Registerer, col T) T {
	if reg == nil {
		return col
	}
	if err := reg.Register(col); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return col
}

func (c *Collector) Start() {
	if c == nil {
		return
	}
	c.inFlight.Inc()
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.inFlight.Dec()

	code := strconv.Itoa(status)
	c.requests.WithLabelValues(method, route, code).Inc()
	c.duration.WithLabelValues(method, route, code).Observe(duration.Seconds())

	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 || status == 0 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
	}
}
