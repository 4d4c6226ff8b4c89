// Package middleware provides cross-cutting concerns for the response
// inspection engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JingYue2000/ChainForge/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of render throughput,
// latency, and group-size distributions for the inspection engine.
type PrometheusMetrics struct {
	renderLatency *prometheus.HistogramVec
	renderCounter *prometheus.CounterVec
	groupSizes    *prometheus.HistogramVec
	systemGauges  *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance registered in
// the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith creates a PrometheusMetrics instance registered
// in the provided registry. Use this in tests to avoid duplicate
// registration in the global registry.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		renderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "render_duration_seconds",
				Help:    "Execution time of render operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "renderer"},
		),
		renderCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "render_operations_total",
				Help: "Total number of render operations performed.",
			},
			[]string{"metric", "status", "renderer"},
		),
		groupSizes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "response_group_size",
				Help:    "Distribution of deduplicated response group sizes.",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50, 100},
			},
			[]string{"renderer"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "render_system_state",
				Help: "Current system state values for the render engine.",
			},
			[]string{"metric", "renderer"},
		),
	}
}

// rendererLabel extracts the renderer label with an "unknown" fallback.
func rendererLabel(labels map[string]string) string {
	renderer, ok := labels["renderer"]
	if !ok {
		return "unknown"
	}
	return renderer
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.renderLatency.WithLabelValues(operation, rendererLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	pm.renderCounter.WithLabelValues(metric, "success", rendererLabel(labels)).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, rendererLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in the appropriate Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "response_group_size":
		pm.groupSizes.WithLabelValues(rendererLabel(labels)).Observe(value)
	default:
		pm.renderLatency.WithLabelValues(metric, rendererLabel(labels)).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
