package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CreditX metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creditx",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"method", "route"},
	)

	// Submissions by outcome: scored, or the error kind that stopped them.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "pipeline",
			Name:      "submissions_total",
			Help:      "Total application submissions by outcome",
		},
		[]string{"outcome"},
	)

	// Model calls by stage and outcome
	ModelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total language model calls",
		},
		[]string{"stage", "outcome"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creditx",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Language model call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 180, 600},
		},
		[]string{"stage"},
	)

	PromptChars = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creditx",
			Subsystem: "llm",
			Name:      "prompt_chars",
			Help:      "Size of rendered prompts in characters",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 10),
		},
		[]string{"stage"},
	)

	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by outcome",
		},
		[]string{"outcome"},
	)

	// Memory store operations
	MemoryOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "memory",
			Name:      "operations_total",
			Help:      "Total conversation memory operations",
		},
		[]string{"backend", "op", "status"},
	)

	BureauLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "bureau",
			Name:      "lookups_total",
			Help:      "Total bureau lookups by result",
		},
		[]string{"result"},
	)

	// Stateless analyses (expense, welfare) by outcome.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditx",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total expense and welfare analyses by outcome",
		},
		[]string{"analysis", "outcome"},
	)
)

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Status renders err as a metric label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
