// Package metrics exposes gateway counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeDelivered   = "delivered"
	OutcomeGated       = "gated"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
	OutcomeVerified    = "verified"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
)

// Recorder owns a registry and the gateway's collectors.
type Recorder struct {
	registry      *prometheus.Registry
	issued        *prometheus.CounterVec
	resolved      *prometheus.CounterVec
	verified      *prometheus.CounterVec
	verifyLatency prometheus.Histogram
	rateLimited   *prometheus.CounterVec
	consumed      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry under namespace.
func New(namespace string) *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_issued_total",
			Help:      "Links issued, by mode.",
		}, []string{"mode"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_resolved_total",
			Help:      "Identifier resolutions, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		verified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Proof submissions, by outcome.",
		}, []string{"outcome"}),
		verifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "Time spent on a proof submission including the authority call.",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 9),
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by the rate limiter, by scope.",
		}, []string{"scope"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Analytics messages handled by in-process consumers, by topic and outcome.",
		}, []string{"topic", "outcome"}),
	}

	registry.MustRegister(r.issued, r.resolved, r.verified, r.verifyLatency, r.rateLimited, r.consumed)

	return r
}

func (r *Recorder) Issued(mode string) {
	r.issued.WithLabelValues(mode).Inc()
}

func (r *Recorder) Resolved(mode, outcome string) {
	r.resolved.WithLabelValues(mode, outcome).Inc()
}

func (r *Recorder) Verified(outcome string, took time.Duration) {
	r.verified.WithLabelValues(outcome).Inc()
	r.verifyLatency.Observe(took.Seconds())
}

func (r *Recorder) RateLimited(scope string) {
	r.rateLimited.WithLabelValues(scope).Inc()
}

func (r *Recorder) Consumed(topic, outcome string) {
	r.consumed.WithLabelValues(topic, outcome).Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
