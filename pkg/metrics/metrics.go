// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RelayOutcomesTotal counts gateway outcomes by error class ("ok" on success).
	RelayOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_relay_outcomes_total",
			Help: "Gateway relay outcomes by class",
		},
		[]string{"class"},
	)

	// UpstreamDuration tracks the round trip to the suggestion service.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_upstream_duration_seconds",
			Help:    "Suggestion service round trip duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"status"},
	)

	// LLMCompletionDuration tracks LLM completion duration.
	LLMCompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "LLM completion duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// SuggestionsGenerated tracks how many suggestions each generation produced.
	SuggestionsGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggestions_generated",
			Help:    "Number of gift suggestions per successful generation",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordRelay records one gateway relay outcome.
func RecordRelay(class string) {
	RelayOutcomesTotal.WithLabelValues(class).Inc()
}

// RecordUpstream records one upstream round trip. Use status "unreachable"
// when no response was received.
func RecordUpstream(status string, duration float64) {
	UpstreamDuration.WithLabelValues(status).Observe(duration)
}

// RecordLLMCompletion records metrics for an LLM completion.
func RecordLLMCompletion(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMCompletionDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}
