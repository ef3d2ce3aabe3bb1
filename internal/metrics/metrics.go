// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/roommatch/internal/match"
)

var (
	// Matching Metrics
	MatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_match_batches_total",
			Help: "Total number of group matching batches",
		},
		[]string{"result"}, // "success", "error"
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roommatch_match_duration_seconds",
			Help:    "Duration of a full matching batch (preferences plus all runs)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	MatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_match_errors_total",
			Help: "Total number of matching errors by kind",
		},
		[]string{"error_type"},
	)

	MatchPopulation = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roommatch_match_population",
			Help:    "Number of participants per matching batch",
			Buckets: []float64{2, 10, 50, 100, 250, 500, 1000, 2000},
		},
	)

	OptionsProduced = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roommatch_options_produced",
			Help:    "Number of ranked options returned per batch",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	BestStablePairs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roommatch_best_stable_pairs",
			Help: "Stable pair count of the top option from the last batch",
		},
	)

	BestStableRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roommatch_best_stable_ratio",
			Help: "Stable pairs over total pairs for the top option from the last batch",
		},
	)

	GroupsFormed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roommatch_groups_formed_total",
			Help: "Total number of groups in top options",
		},
	)

	ParticipantsAssigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_participants_total",
			Help: "Participants in top options by assignment",
		},
		[]string{"assignment"}, // "matched", "unmatched"
	)

	TruncatedRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roommatch_truncated_runs_total",
			Help: "Total number of matching runs stopped by the step guard",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"result"}, // "success", "error", "not_found"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roommatch_recommendation_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roommatch_recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	// Feedback Metrics
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_feedback_total",
			Help: "Total number of feedback events applied by outcome",
		},
		[]string{"outcome"},
	)

	WeightAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_weight_adjustments_total",
			Help: "Total number of weight changes by attribute and direction",
		},
		[]string{"attribute", "direction"}, // direction: "up", "down"
	)

	// Weight Store Metrics
	WeightStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_weight_store_operations_total",
			Help: "Total number of weight store operations",
		},
		[]string{"operation", "result"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roommatch_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"type", "result"}, // result: "success", "failure", "rejected"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests on the operations listener",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// result returns the conventional label for err.
func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// errorType classifies a matching error into a bounded label value.
func errorType(err error) string {
	switch {
	case errors.Is(err, match.ErrInvalidAttribute):
		return "invalid_attribute"
	case errors.Is(err, match.ErrZeroWeightSum):
		return "zero_weight_sum"
	case errors.Is(err, match.ErrUnknownParticipant), errors.Is(err, match.ErrNotFound):
		return "not_found"
	case errors.Is(err, match.ErrPopulationTooLarge):
		return "population_too_large"
	case errors.Is(err, match.ErrDuplicateParticipant):
		return "duplicate_participant"
	default:
		return "other"
	}
}

// BatchSummary describes the top option of a matching batch.
type BatchSummary struct {
	Population  int
	Options     int
	Groups      int
	Matched     int
	Unmatched   int
	StablePairs int
	TotalPairs  int
	Truncated   int
}

// RecordMatchBatch records the outcome of a matching batch.
//
//nolint:gocritic // summary passed by value
func RecordMatchBatch(duration time.Duration, summary BatchSummary, err error) {
	MatchRunsTotal.WithLabelValues(result(err)).Inc()
	MatchDuration.Observe(duration.Seconds())
	if err != nil {
		MatchErrors.WithLabelValues(errorType(err)).Inc()
		return
	}

	MatchPopulation.Observe(float64(summary.Population))
	OptionsProduced.Observe(float64(summary.Options))
	TruncatedRuns.Add(float64(summary.Truncated))
	if summary.Options == 0 {
		return
	}

	BestStablePairs.Set(float64(summary.StablePairs))
	if summary.TotalPairs > 0 {
		BestStableRatio.Set(float64(summary.StablePairs) / float64(summary.TotalPairs))
	} else {
		BestStableRatio.Set(0)
	}
	GroupsFormed.Add(float64(summary.Groups))
	ParticipantsAssigned.WithLabelValues("matched").Add(float64(summary.Matched))
	ParticipantsAssigned.WithLabelValues("unmatched").Add(float64(summary.Unmatched))
}

// RecordRecommendation records a recommendation request.
func RecordRecommendation(duration time.Duration, returned int, err error) {
	label := result(err)
	if errors.Is(err, match.ErrNotFound) || errors.Is(err, match.ErrUnknownParticipant) {
		label = "not_found"
	}
	RecommendationRequests.WithLabelValues(label).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	if err == nil {
		RecommendationsReturned.Observe(float64(returned))
	}
}

// RecordFeedback records one applied feedback event.
func RecordFeedback(outcome match.Outcome) {
	FeedbackTotal.WithLabelValues(string(outcome)).Inc()
}

// RecordWeightAdjustment records one weight change.
func RecordWeightAdjustment(attr match.Attribute, before, after float64) {
	direction := "up"
	if after < before {
		direction = "down"
	}
	WeightAdjustments.WithLabelValues(string(attr), direction).Inc()
}

// RecordWeightStoreOp records a weight store operation.
func RecordWeightStoreOp(operation string, err error) {
	WeightStoreOps.WithLabelValues(operation, result(err)).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// SetCacheEntries sets the current entry count of a cache.
func SetCacheEntries(cache string, n int) {
	CacheEntries.WithLabelValues(cache).Set(float64(n))
}

// RecordEventPublish records a publish attempt. result is "success",
// "failure" or "rejected" (circuit open).
func RecordEventPublish(eventType, result string) {
	EventsPublished.WithLabelValues(eventType, result).Inc()
}

// RecordCircuitBreakerTransition records a state change and updates the gauge.
// States use the circuit_breaker_state encoding.
func RecordCircuitBreakerTransition(name string, from, to int) {
	CircuitBreakerTransitions.WithLabelValues(name, stateName(from), stateName(to)).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(to))
}

func stateName(state int) string {
	switch state {
	case 0:
		return "closed"
	case 1:
		return "half-open"
	case 2:
		return "open"
	default:
		return "unknown"
	}
}

// RecordHTTPRequest records an operations listener request.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
