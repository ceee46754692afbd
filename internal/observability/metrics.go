// ABOUTME: Prometheus counters for import runs.
// ABOUTME: Metrics live on a private registry and can be written as a textfile.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import outcomes recorded per file.
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// ImportMetrics counts processed files by kind and outcome.
type ImportMetrics struct {
	registry     *prometheus.Registry
	files        *prometheus.CounterVec
	lastRun      prometheus.Gauge
	runDuration  prometheus.Gauge
	lastActivity prometheus.Gauge
}

// NewImportMetrics creates the counters on a fresh registry.
func NewImportMetrics() *ImportMetrics {
	m := &ImportMetrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trainload",
			Subsystem: "import",
			Name:      "files_total",
			Help:      "Source files processed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trainload",
			Subsystem: "import",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the most recent completed import run.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trainload",
			Subsystem: "import",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent import run.",
		}),
		lastActivity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trainload",
			Subsystem: "persistence",
			Name:      "last_activity_start_timestamp_seconds",
			Help:      "Start time of the most recent activity persisted.",
		}),
	}
	m.registry.MustRegister(m.files, m.lastRun, m.runDuration, m.lastActivity)
	return m
}

// Observe counts one file outcome.
func (m *ImportMetrics) Observe(kind, outcome string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(kind, outcome).Inc()
}

// RecordActivityPersisted moves the persistence watermark forward.
func (m *ImportMetrics) RecordActivityPersisted(start time.Time) {
	if m == nil || start.IsZero() {
		return
	}
	m.lastActivity.Set(float64(start.Unix()))
}

// RecordRun stores the completion time and duration of a run.
func (m *ImportMetrics) RecordRun(finished time.Time, took time.Duration) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(finished.Unix()))
	m.runDuration.Set(took.Seconds())
}

// Registry exposes the underlying registry.
func (m *ImportMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func (m *ImportMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
