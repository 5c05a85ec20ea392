// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questionnaire_sessions_started_total",
			Help: "Questionnaire sessions started, by entry mode",
		},
		[]string{"entry_mode"},
	)

	SessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questionnaire_sessions_finished_total",
			Help: "Questionnaire sessions that reached a terminal state",
		},
		[]string{"status"},
	)

	AnswersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questionnaire_answers_rejected_total",
			Help: "Answers rejected by validation, by question",
		},
		[]string{"question_id"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_provider_requests_total",
			Help: "Provider pricing calls by outcome",
		},
		[]string{"provider", "status"},
	)

	QuoteAggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quote_aggregation_duration_seconds",
			Help:    "Wall time of a full provider fan-out",
			Buckets: prometheus.DefBuckets,
		},
	)

	FallbacksUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_fallbacks_total",
			Help: "Times a deterministic fallback replaced a remote assist service",
		},
		[]string{"capability"},
	)
)
