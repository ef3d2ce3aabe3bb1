// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package similarity

import (
	"fmt"

	"github.com/tomtom215/roommatch/internal/match"
)

// Adjustment records one weight change made by AdjustWeights.
type Adjustment struct {
	Attribute match.Attribute `json:"attribute"`
	Before    float64         `json:"before"`
	After     float64         `json:"after"`
}

// AdjustWeights returns a copy of weights nudged toward the attributes that
// drove a match outcome. Attributes whose similarity in breakdown exceeds
// cfg.Threshold move by cfg.Step, up for positive outcomes and down for
// rejections, clamped to [cfg.MinWeight, cfg.MaxWeight].
//
// Only user-tunable attributes already present in weights are adjusted. The
// input map is never modified.
//
//nolint:gocritic // config passed by value
func AdjustWeights(
	weights match.Weights,
	breakdown match.Breakdown,
	outcome match.Outcome,
	cfg match.FeedbackConfig,
) (match.Weights, []Adjustment, error) {
	if !outcome.Valid() {
		return nil, nil, fmt.Errorf("adjust weights: %w", &match.InvalidAttributeError{
			Attribute: "outcome", Value: string(outcome),
		})
	}

	step := cfg.Step
	if !outcome.IsPositive() {
		step = -step
	}

	out := weights.Clone()
	if out == nil {
		out = match.Weights{}
	}

	var changes []Adjustment
	for _, attr := range match.UserAttributes() {
		before, ok := out[attr]
		if !ok {
			continue
		}
		if breakdown[attr] <= cfg.Threshold {
			continue
		}
		after := clamp(before+step, cfg.MinWeight, cfg.MaxWeight)
		out[attr] = after
		if after != before {
			changes = append(changes, Adjustment{Attribute: attr, Before: before, After: after})
		}
	}

	return out, changes, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
