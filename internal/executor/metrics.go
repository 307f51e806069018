package executor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors reporting executor activity.
type Metrics struct {
	toolCalls    *prometheus.CounterVec
	snapshotsCut prometheus.Counter
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. The collectors are created only once to
// avoid duplicate registration panics when several executors exist in one
// process.
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided
// registerer. Tests pass a fresh registry to keep metric names unique;
// registration errors panic, mirroring promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	toolCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "executor",
			Name:      "tool_calls_total",
			Help:      "Total tool calls by tool name and outcome.",
		},
		[]string{"tool", "outcome"},
	)
	snapshotsCut := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "executor",
			Name:      "pre_execution_snapshots_total",
			Help:      "Snapshots captured before mutating tool calls.",
		},
	)
	reg.MustRegister(toolCalls, snapshotsCut)
	return &Metrics{toolCalls: toolCalls, snapshotsCut: snapshotsCut}
}

func (m *Metrics) observeCall(toolName string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.toolCalls.WithLabelValues(toolName, outcome).Inc()
}

func (m *Metrics) observeSnapshot() {
	if m == nil {
		return
	}
	m.snapshotsCut.Inc()
}
