// Package metrics collects and exposes Prometheus metrics for the
// widget's refresh pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records refresh-pipeline metrics.
type Collector struct {
	registry *prometheus.Registry

	ticks         *prometheus.CounterVec
	fetchFailures prometheus.Counter
	staleDrops    prometheus.Counter
	unreadCount   prometheus.Gauge
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailpane_ticks_total",
			Help: "Refresh ticks by trigger source (push, timer).",
		}, []string{"trigger"}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailpane_fetch_failures_total",
			Help: "Unread fetches that ended in a transport, status or parse error.",
		}),
		staleDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailpane_stale_results_dropped_total",
			Help: "Fetch results discarded because a newer tick superseded them.",
		}),
		unreadCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mailpane_unread_count",
			Help: "Unread messages rendered by the most recent tick.",
		}),
	}

	c.registry.MustRegister(
		c.ticks,
		c.fetchFailures,
		c.staleDrops,
		c.unreadCount,
	)

	return c
}

// RecordTick records one refresh trigger by source.
func (c *Collector) RecordTick(trigger string) {
	c.ticks.WithLabelValues(trigger).Inc()
}

// RecordFetchFailure records one failed unread fetch.
func (c *Collector) RecordFetchFailure() {
	c.fetchFailures.Inc()
}

// RecordStaleDrop records one discarded stale fetch result.
func (c *Collector) RecordStaleDrop() {
	c.staleDrops.Inc()
}

// SetUnreadCount records the counter value of the latest render.
func (c *Collector) SetUnreadCount(n int) {
	c.unreadCount.Set(float64(n))
}

// Handler returns the /metrics HTTP handler for this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
