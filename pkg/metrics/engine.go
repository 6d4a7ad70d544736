package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records commit outcomes and availability-gate latency.
type EngineMetrics struct {
	commits      *prometheus.CounterVec
	availability *prometheus.HistogramVec
	sessionsOpen prometheus.Gauge
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commit_total",
		Help: "Commit attempts by outcome.",
	}, []string{"outcome"})
	availability := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "availability_check_duration_seconds",
		Help:    "Duration of inventory availability checks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	sessionsOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_open",
		Help: "Currently open customization sessions.",
	})
	reg.MustRegister(commits, availability, sessionsOpen)
	return &EngineMetrics{
		commits:      commits,
		availability: availability,
		sessionsOpen: sessionsOpen,
	}
}

// IncCommit increments the commit counter for the given outcome.
func (m *EngineMetrics) IncCommit(outcome string) {
	if m == nil || m.commits == nil {
		return
	}
	m.commits.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveAvailability records the duration of one availability check.
func (m *EngineMetrics) ObserveAvailability(result string, duration time.Duration) {
	if m == nil || m.availability == nil {
		return
	}
	m.availability.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// SetSessionsOpen updates the open-session gauge.
func (m *EngineMetrics) SetSessionsOpen(n int) {
	if m == nil || m.sessionsOpen == nil {
		return
	}
	m.sessionsOpen.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
