// Package metrics collects and exposes Prometheus metrics for the bridge
// daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	events        *prometheus.CounterVec
	reconnects    prometheus.Counter
	droppedFrames prometheus.Counter
	requests      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smsbridge_realtime_events_total",
			Help: "Realtime events received, by event type.",
		}, []string{"type"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smsbridge_realtime_reconnects_total",
			Help: "Automatic realtime reconnect attempts.",
		}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smsbridge_realtime_dropped_frames_total",
			Help: "Inbound realtime frames dropped as malformed.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smsbridge_api_requests_total",
			Help: "API requests completed, by outcome (ok or error category).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.events,
		c.reconnects,
		c.droppedFrames,
		c.requests,
	)

	return c
}

func (c *Collector) RecordEvent(eventType string) {
	c.events.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordReconnect() {
	c.reconnects.Inc()
}

func (c *Collector) RecordDroppedFrame() {
	c.droppedFrames.Inc()
}

func (c *Collector) RecordRequest(outcome string) {
	c.requests.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// NewRegistry builds a registry preloaded with the standard Go runtime and
// process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
