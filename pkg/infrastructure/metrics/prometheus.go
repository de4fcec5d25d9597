// Package metrics provides Prometheus metrics for method views
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ViewsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "methodtree_views_built_total",
			Help: "Total number of BOM and routing views built",
		},
		[]string{"domain", "view", "status"},
	)

	ViewRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "methodtree_view_rows_total",
			Help: "Total number of rows emitted into views",
		},
		[]string{"domain", "view"},
	)

	ViewBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "methodtree_view_build_duration_seconds",
			Help:    "Time taken to build a view, repository reads included",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"domain", "view"},
	)

	NonFiniteDurationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "methodtree_non_finite_durations_total",
			Help: "Operations whose computed duration was Inf or NaN",
		},
		[]string{"domain"},
	)
)

// ViewMetrics records metrics for one domain
type ViewMetrics struct {
	domain string
}

// NewViewMetrics creates a metrics recorder for a domain
func NewViewMetrics(domain string) *ViewMetrics {
	return &ViewMetrics{domain: domain}
}

// RecordView records a successfully built view
func (m *ViewMetrics) RecordView(view string, rows int, duration time.Duration) {
	ViewsBuiltTotal.WithLabelValues(m.domain, view, "ok").Inc()
	ViewRowsTotal.WithLabelValues(m.domain, view).Add(float64(rows))
	ViewBuildDuration.WithLabelValues(m.domain, view).Observe(duration.Seconds())
}

// RecordFailure records a view that could not be built
func (m *ViewMetrics) RecordFailure(view string) {
	ViewsBuiltTotal.WithLabelValues(m.domain, view, "error").Inc()
}

// RecordNonFinite records operations with non-finite durations
func (m *ViewMetrics) RecordNonFinite(count int) {
	if count == 0 {
		return
	}
	NonFiniteDurationsTotal.WithLabelValues(m.domain).Add(float64(count))
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
