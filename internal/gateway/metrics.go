package gateway

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/flemzord/linekit/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "linekit"

var _ router.Metrics = (*Metrics)(nil)

// Metrics records bot activity. It exports Prometheus collectors on its own
// registry and keeps atomic totals for the JSON status endpoints.
// All methods are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	replies  prometheus.Counter
	media    *prometheus.CounterVec
	batches  *prometheus.CounterVec

	eventCount   atomic.Int64
	errorCount   atomic.Int64
	replyCount   atomic.Int64
	batchCount   atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// NewMetrics creates a Metrics with every collector registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Webhook events routed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent routing one event, reply included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		replies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reply_messages_total",
			Help:      "Messages sent through reply calls.",
		}),
		media: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "media_fetch_total",
			Help:      "Platform content downloads, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "webhook_batches_total",
			Help:      "Webhook requests answered, by HTTP status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.events, m.duration, m.replies, m.media, m.batches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordEvent records one routed event.
func (m *Metrics) RecordEvent(kind, outcome string, elapsed time.Duration) {
	m.events.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.eventCount.Add(1)
	m.totalLatency.Add(int64(elapsed))
	if outcome == router.OutcomeError {
		m.errorCount.Add(1)
	}
}

// RecordReply records a successful reply call carrying n messages.
func (m *Metrics) RecordReply(n int) {
	m.replies.Add(float64(n))
	m.replyCount.Add(int64(n))
}

// RecordMedia records one content download attempt.
func (m *Metrics) RecordMedia(kind, outcome string) {
	m.media.WithLabelValues(kind, outcome).Inc()
}

// RecordBatch records the status a webhook request was answered with.
func (m *Metrics) RecordBatch(status int) {
	m.batches.WithLabelValues(strconv.Itoa(status)).Inc()
	m.batchCount.Add(1)
}

// Registry returns the Prometheus registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	events := m.eventCount.Load()
	snap := MetricsSnapshot{
		Events:  events,
		Errors:  m.errorCount.Load(),
		Replies: m.replyCount.Load(),
		Batches: m.batchCount.Load(),
	}
	if events > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / events)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Events     int64         `json:"events"`
	Errors     int64         `json:"errors"`
	Replies    int64         `json:"replies"`
	Batches    int64         `json:"batches"`
	AvgLatency time.Duration `json:"avg_latency_ns"`
}
