// Package metrics provides Prometheus metrics for plumbline analyses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Analysis ───────────────────────────────────────────────────────────────

// AnalysesTotal tracks completed schedule analyses.
var AnalysesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "plumbline",
	Name:      "analyses_total",
	Help:      "Total completed schedule analyses.",
})

// AnalysisDuration tracks end-to-end analysis duration in seconds.
var AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "plumbline",
	Name:      "analysis_duration_seconds",
	Help:      "End-to-end schedule analysis duration in seconds.",
	Buckets:   prometheus.DefBuckets,
})

// ScheduleTasks tracks the task count of the most recent analysis.
var ScheduleTasks = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "plumbline",
	Name:      "schedule_tasks",
	Help:      "Task count of the most recently analyzed schedule.",
})

// ─── Scenarios ──────────────────────────────────────────────────────────────

// ScenariosSimulated tracks delay propagation scenarios run.
var ScenariosSimulated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "plumbline",
	Name:      "scenarios_simulated_total",
	Help:      "Total delay propagation scenarios simulated.",
})

// ─── Input ──────────────────────────────────────────────────────────────────

// InputRejects tracks schedule documents rejected at load time.
var InputRejects = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "plumbline",
	Name:      "input_rejects_total",
	Help:      "Total schedule documents rejected at load time, by reason.",
}, []string{"reason"})
