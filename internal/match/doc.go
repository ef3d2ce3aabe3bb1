// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package match holds the shared data model for the roommate matching core.
//
// The core is a pure in-process library. It never performs I/O; callers hand
// it fully materialized snapshots of people and profiles and receive ranked
// results back. Subpackages implement the pipeline in dependency order:
//
//   - attributes: per-attribute distances and distance-to-similarity conversion
//   - similarity: weighted aggregate scoring and feedback weight adjustment
//   - preference: pairwise preference matrix construction
//   - grouping: capacity-aware deferred acceptance and the stability metric
//   - options: multi-run diversification ranked by stable-pair count
//   - recommend: one-to-one candidate ranking with a deterministic tie-break chain
//   - engine: orchestration over the data, weight store, and event collaborators
//
// # Data Flow
//
//	records -> preference matrix -> grouping / recommend -> options -> caller
//
// # Errors
//
// Enum values outside their known set surface as ErrInvalidAttribute.
// Weight vectors that sum to zero surface as ErrZeroWeightSum. No operation in
// the core returns NaN.
package match
