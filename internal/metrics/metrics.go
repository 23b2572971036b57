// Package metrics defines MovePilot's Prometheus instrumentation. Counters
// live here so every package increments the same registry; the API server
// exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatTurnsTotal counts chat turns by outcome: ok, invalid, denied, failed.
	ChatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movepilot_chat_turns_total",
		Help: "Chat turns processed, by outcome",
	}, []string{"outcome"})

	// ChatFailuresTotal counts failed provider calls by taxonomy kind.
	ChatFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movepilot_chat_failures_total",
		Help: "Failed chat turns by failure kind",
	}, []string{"kind"})

	// AdmissionDeniedTotal counts turns rejected by the per-user rate limiter.
	AdmissionDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movepilot_admission_denied_total",
		Help: "Chat turns denied by the admission window",
	})

	// ProviderLatency observes the wall time of provider calls.
	ProviderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "movepilot_provider_latency_seconds",
		Help:    "Latency of model provider calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	})

	// ValidationFlagsTotal counts non-blocking reply validation findings.
	ValidationFlagsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movepilot_reply_validation_flags_total",
		Help: "Assistant replies flagged by the non-blocking validator",
	}, []string{"reason"})

	// WorkflowFallbacksTotal counts lookups served the generic fallback
	// survey. A rising rate usually means a catalog id typo upstream.
	WorkflowFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movepilot_workflow_fallback_served_total",
		Help: "Workflow lookups answered with the generic fallback survey",
	})

	// SubmissionsTotal counts accepted workflow submissions by kind.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movepilot_workflow_submissions_total",
		Help: "Accepted workflow submissions by workflow kind",
	}, []string{"kind"})

	// TasksGeneratedTotal counts tasks upserted by the task generator.
	TasksGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movepilot_tasks_generated_total",
		Help: "Tasks upserted from mini-assessment submissions",
	})

	// OperatorAlertsTotal counts alerts raised for provider auth failures.
	OperatorAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movepilot_operator_alerts_total",
		Help: "Operator alerts sent for non-retryable provider failures",
	})
)
