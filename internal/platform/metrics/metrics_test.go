package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestCollectorRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "hrm", "test")

	c.Start()
	c.Record("GET", "/employees", 200, 10*time.Millisecond)
	c.Start()
	c.Record("GET", "/employees", 500, 30*time.Millisecond)
	c.Start()
	c.Record("POST", "/auth/login", 429, 0)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}

	if got := counterValue(t, c.requests.WithLabelValues("GET", "/employees", "200")); got != 1 {
		t.Fatalf("expected 1 labelled request, got %v", got)
	}
	if got := gaugeValue(t, c.inFlight); got != 0 {
		t.Fatalf("expected in-flight back at 0, got %v", got)
	}
}

func TestRegisterReusesExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg, "hrm", "dup")
	second := New(reg, "hrm", "dup")

	first.Start()
	first.Record("GET", "/x", 200, time.Millisecond)

	if got := counterValue(t, second.requests.WithLabelValues("GET", "/x", "200")); got != 1 {
		t.Fatalf("expected shared series, got %v", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Start()
	c.Record("GET", "/", 200, time.Millisecond)
	if len(c.Snapshot()) != 0 {
		t.Fatal("expected empty snapshot")
	}
}
