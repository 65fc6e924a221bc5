// Package metrics collects Prometheus metrics for the history service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for the viewer and the history API.
type Metrics struct {
	reportsTotal      *prometheus.CounterVec
	cardsTotal        *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	fetchFailures     *prometheus.CounterVec
	decisionFailures  prometheus.Counter
	envelopeFallbacks prometheus.Counter
	recordsIngested   *prometheus.CounterVec
	backendHealthy    prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *Metrics
)

// NewMetrics creates the metrics collector. Registration happens once per
// process; repeated calls return the same instance.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInst = &Metrics{
			reportsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "analysis_history_reports_total",
					Help: "Total number of reports rendered",
				},
				[]string{"mode"},
			),
			cardsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "analysis_history_cards_total",
					Help: "Total number of cards rendered by kind",
				},
				[]string{"kind"},
			),
			renderDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "analysis_history_render_duration_seconds",
					Help:    "Report build and render duration in seconds",
					Buckets: prometheus.DefBuckets, // 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10
				},
				[]string{"mode"},
			),
			fetchFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "analysis_history_fetch_failures_total",
					Help: "Total number of record fetches that failed",
				},
				[]string{"mode"},
			),
			decisionFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "analysis_history_decision_parse_failures_total",
					Help: "Total number of decision blocks that were not valid JSON",
				},
			),
			envelopeFallbacks: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "analysis_history_envelope_fallbacks_total",
					Help: "Total number of response bodies treated as literal text",
				},
			),
			recordsIngested: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "analysis_history_records_ingested_total",
					Help: "Total number of records accepted by the ingestion endpoints",
				},
				[]string{"kind"},
			),
			backendHealthy: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "analysis_history_backend_healthy",
					Help: "Remote backend health status (1 = healthy, 0 = unhealthy)",
				},
			),
		}
	})
	return metricsInst
}

// RecordReport records one rendered report and its card mix.
func (m *Metrics) RecordReport(mode string, kinds []string, duration time.Duration) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	m.reportsTotal.WithLabelValues(mode).Inc()
	m.renderDuration.WithLabelValues(mode).Observe(duration.Seconds())
	for _, kind := range kinds {
		m.cardsTotal.WithLabelValues(kind).Inc()
	}
}

// RecordFetchFailure records a failed record load.
func (m *Metrics) RecordFetchFailure(mode string) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	m.fetchFailures.WithLabelValues(mode).Inc()
}

// RecordDecisionParseFailure records a decision block that did not parse.
func (m *Metrics) RecordDecisionParseFailure() {
	if m == nil {
		return
	}
	m.decisionFailures.Inc()
}

// RecordEnvelopeFallback records a response body shown as literal text.
func (m *Metrics) RecordEnvelopeFallback() {
	if m == nil {
		return
	}
	m.envelopeFallbacks.Inc()
}

// RecordIngested records an accepted record.
func (m *Metrics) RecordIngested(kind string) {
	if m == nil {
		return
	}
	m.recordsIngested.WithLabelValues(kind).Inc()
}

// UpdateBackendHealth updates the backend health gauge.
func (m *Metrics) UpdateBackendHealth(healthy bool) {
	if m == nil {
		return
	}
	if healthy {
		m.backendHealthy.Set(1)
	} else {
		m.backendHealthy.Set(0)
	}
}
