// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package metrics provides Prometheus metrics for the matching engine.

All collectors are registered on the default registry through promauto and
exposed by the operations listener at /metrics:

	curl http://localhost:9090/metrics

# Available Metrics

Matching:
  - roommatch_match_batches_total{result}: matching batches (counter)
  - roommatch_match_duration_seconds: batch latency (histogram)
  - roommatch_match_errors_total{error_type}: failures by kind (counter)
  - roommatch_options_produced: options per batch (histogram)
  - roommatch_best_stable_pairs, roommatch_best_stable_ratio: top option quality (gauges)
  - roommatch_groups_formed_total, roommatch_participants_total{assignment}

Recommendations and feedback:
  - roommatch_recommendation_requests_total{result}
  - roommatch_recommendation_duration_seconds
  - roommatch_feedback_total{outcome}
  - roommatch_weight_adjustments_total{attribute,direction}
  - roommatch_weight_store_operations_total{operation,result}

Infrastructure:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table,error_type}
  - cache_hits_total{cache}, cache_misses_total{cache}, cache_entries{cache}
  - roommatch_events_published_total{type,result}
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total
  - http_requests_total, http_request_duration_seconds

# Usage

	start := time.Now()
	opts, err := engine.MatchGroups(ctx, ids)
	metrics.RecordMatchBatch(time.Since(start), summary, err)

Label values are bounded: errors are classified into a fixed set of kinds, and
attributes come from the fixed attribute catalogue.
*/
package metrics
