// Package metrics defines the Prometheus instruments for blog-publisher.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog_publisher"

// Metrics holds every instrument the service records.
type Metrics struct {
	// Ingestion
	IngestTotal    *prometheus.CounterVec
	IngestDuration prometheus.Histogram

	// Mirror
	MirrorTotal        *prometheus.CounterVec
	MirrorBreakerState prometheus.Gauge

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		IngestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "posts_total",
			Help:      "Post submissions by result (created, invalid, conflict, error).",
		}, []string{"result"}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time to ingest a post, mirror included.",
			Buckets:   prometheus.DefBuckets,
		}),
		MirrorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "commits_total",
			Help:      "Mirror attempts by outcome.",
		}, []string{"outcome"}),
		MirrorBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "breaker_state",
			Help:      "Mirror circuit breaker state (0 closed, 1 open, 2 half-open).",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) RecordIngest(result string, elapsed time.Duration) {
	m.IngestTotal.WithLabelValues(result).Inc()
	m.IngestDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordMirror(outcome string) {
	m.MirrorTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetBreakerState(state int) {
	m.MirrorBreakerState.Set(float64(state))
}

func (m *Metrics) RecordHTTP(route, method, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
