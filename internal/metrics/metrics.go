// Package metrics provides Prometheus metrics for the digest engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "digest"

var (
	// SubmissionsTotal counts daily and weekly submissions by outcome.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of digest submissions",
		},
		[]string{"kind", "status"},
	)

	// ArticlesArchivedTotal counts archive rows by status, including skipped duplicates.
	ArticlesArchivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_archived_total",
			Help:      "Total number of articles written to the archive",
		},
		[]string{"status"},
	)

	// ToolCallsTotal counts tool invocations.
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	// ToolCallDuration measures tool latency.
	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of tool calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

// RecordSubmission records an accepted, rejected or failed submission.
func RecordSubmission(kind, status string) {
	SubmissionsTotal.WithLabelValues(kind, status).Inc()
}

// RecordArchive records the outcome of one archive batch.
func RecordArchive(selected, excluded, skipped int) {
	ArticlesArchivedTotal.WithLabelValues("selected").Add(float64(selected))
	ArticlesArchivedTotal.WithLabelValues("excluded").Add(float64(excluded))
	ArticlesArchivedTotal.WithLabelValues("already_archived").Add(float64(skipped))
}

// RecordToolCall records one tool invocation.
func RecordToolCall(tool, status string, duration float64) {
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(duration)
}
