// Package metrics exposes Prometheus counters for the chat pipeline on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mindcare"

// Chat request outcomes.
const (
	OutcomeServed          = "served"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeInvalid         = "invalid"
	OutcomeFault           = "fault"
)

// Collector holds the pipeline counters.
type Collector struct {
	registry *prometheus.Registry

	ChatRequests   *prometheus.CounterVec
	VendorAttempts *prometheus.CounterVec
	CrisisFlags    prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome and servicing backend.",
		}, []string{"outcome", "service"}),
		VendorAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vendor_attempts_total",
			Help:      "Outbound vendor calls by vendor and result.",
		}, []string{"vendor", "result"}),
		CrisisFlags: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crisis_flags_total",
			Help:      "Chat messages that matched the crisis lexicon.",
		}),
	}
	reg.MustRegister(c.ChatRequests, c.VendorAttempts, c.CrisisFlags)
	return c
}

// RecordChat counts one chat request. A nil Collector is a no-op.
func (c *Collector) RecordChat(outcome, service string) {
	if c == nil {
		return
	}
	c.ChatRequests.WithLabelValues(outcome, service).Inc()
}

// RecordVendor counts one vendor attempt; result is "ok" or a failure kind.
func (c *Collector) RecordVendor(vendor, result string) {
	if c == nil {
		return
	}
	c.VendorAttempts.WithLabelValues(vendor, result).Inc()
}

// RecordCrisis counts one crisis-flagged message.
func (c *Collector) RecordCrisis() {
	if c == nil {
		return
	}
	c.CrisisFlags.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
