package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

const namespace = "qrloyalty"

// Metrics collects service telemetry on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	commits        *prometheus.CounterVec
	commitAttempts prometheus.Histogram
	commitLatency  *prometheus.HistogramVec
	tierChanges    *prometheus.CounterVec

	activeSessions prometheus.Gauge
	sessions       *prometheus.CounterVec
	sessionLife    *prometheus.HistogramVec
	scanRejects    *prometheus.CounterVec

	deliveries *prometheus.CounterVec

	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "commits_total",
			Help:      "Ledger commits segmented by outcome.",
		}, []string{"outcome"}),
		commitAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "commit_attempts",
			Help:      "Attempts needed per commit, including optimistic retries.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		}),
		commitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "commit_duration_seconds",
			Help:      "Latency distribution of ledger commits.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		tierChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "tier_changes_total",
			Help:      "Customer tier transitions segmented by the tier reached.",
		}, []string{"tier"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "active_sessions",
			Help:      "Purchase workflows currently in progress.",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "sessions_total",
			Help:      "Finished purchase workflows segmented by terminal state.",
		}, []string{"state"}),
		sessionLife: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "session_duration_seconds",
			Help:      "Lifetime of purchase workflows.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"state"}),
		scanRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "scan_rejections_total",
			Help:      "Scans that did not start a workflow, by reason.",
		}, []string{"reason"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries segmented by event and outcome.",
		}, []string{"event", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests segmented by route, method and status.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.commits,
		m.commitAttempts,
		m.commitLatency,
		m.tierChanges,
		m.activeSessions,
		m.sessions,
		m.sessionLife,
		m.scanRejects,
		m.deliveries,
		m.requests,
		m.durations,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCommit records a ledger commit.
func (m *Metrics) ObserveCommit(outcome string, attempts int, elapsed time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.commits.WithLabelValues(outcome).Inc()
	m.commitAttempts.Observe(float64(attempts))
	m.commitLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveTierChange records a customer reaching a new tier.
func (m *Metrics) ObserveTierChange(businessID int64, tier string) {
	m.tierChanges.WithLabelValues(tier).Inc()
}

// SessionStarted tracks a new workflow.
func (m *Metrics) SessionStarted() {
	m.activeSessions.Inc()
}

// SessionFinished tracks a workflow reaching a terminal state.
func (m *Metrics) SessionFinished(state model.WorkflowState, lifetime time.Duration) {
	m.activeSessions.Dec()
	m.sessions.WithLabelValues(string(state)).Inc()
	m.sessionLife.WithLabelValues(string(state)).Observe(lifetime.Seconds())
}

// ScanRejected counts scans refused before a session started.
func (m *Metrics) ScanRejected(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	m.scanRejects.WithLabelValues(reason).Inc()
}

// ObserveDelivery counts notification delivery outcomes.
func (m *Metrics) ObserveDelivery(event string, outcome string) {
	m.deliveries.WithLabelValues(event, outcome).Inc()
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
