// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package similarity aggregates per-attribute similarities into one directional
// score and adapts user weights from match outcomes.
package similarity

import (
	"fmt"
	"math"

	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/attributes"
)

// Result is a directional similarity with its per-attribute breakdown.
type Result struct {
	Similarity float64         `json:"similarity"`
	Breakdown  match.Breakdown `json:"breakdown"`
}

// Scorer computes the weighted mean similarity of a pair of records from the
// perspective of the first record. A Scorer is immutable and safe for
// concurrent use.
type Scorer struct {
	systemWeights match.Weights
}

// NewScorer creates a scorer with the given system weights. Attributes missing
// from cfg.SystemWeights fall back to their defaults.
//
//nolint:gocritic // config passed by value to keep the scorer immutable
func NewScorer(cfg match.ScoringConfig) *Scorer {
	weights := match.DefaultSystemWeights()
	for attr, w := range cfg.SystemWeights {
		weights[attr] = w
	}
	return &Scorer{systemWeights: weights}
}

// SystemWeights returns a copy of the fixed weights in use.
func (s *Scorer) SystemWeights() match.Weights {
	return s.systemWeights.Clone()
}

// Score returns the similarity of b as seen by a, in (0, 1].
//
// a's profile weights apply to the user-tunable attributes; the system
// weights apply to age, move-in date, university and office location.
//
//nolint:gocritic // records are read-only snapshots
func (s *Scorer) Score(a, b match.Record) (Result, error) {
	if err := CheckWeights(a.Profile.Weights); err != nil {
		return Result{}, fmt.Errorf("score %d->%d: %w", a.ID(), b.ID(), err)
	}

	breakdown, err := Breakdown(a, b)
	if err != nil {
		return Result{}, fmt.Errorf("score %d->%d: %w", a.ID(), b.ID(), err)
	}

	// Fixed summation order keeps scores bit-identical across calls.
	var weighted, total float64
	for _, attr := range match.UserAttributes() {
		w := a.Profile.Weights[attr]
		weighted += w * breakdown[attr]
		total += w
	}
	for _, attr := range match.SystemAttributes() {
		w := s.systemWeights[attr]
		weighted += w * breakdown[attr]
		total += w
	}

	if total == 0 {
		return Result{}, fmt.Errorf("score %d->%d: %w", a.ID(), b.ID(), match.ErrZeroWeightSum)
	}

	return Result{Similarity: weighted / total, Breakdown: breakdown}, nil
}

// CheckWeights rejects unknown keys, weights outside [0, 1] and vectors
// summing to zero.
func CheckWeights(w match.Weights) error {
	var sum float64
	for attr, v := range w {
		if !match.IsUserAttribute(attr) {
			return &match.InvalidAttributeError{Attribute: attr, Value: "weight key"}
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return &match.InvalidAttributeError{Attribute: attr, Value: fmt.Sprintf("weight %v", v)}
		}
		sum += v
	}
	if sum == 0 {
		return match.ErrZeroWeightSum
	}
	return nil
}

// Breakdown computes the similarity of every attribute between a and b.
//
//nolint:gocritic // records are read-only snapshots
func Breakdown(a, b match.Record) (match.Breakdown, error) {
	pa, pb := a.Profile, b.Profile
	out := make(match.Breakdown, 15)

	enums := []struct {
		attr match.Attribute
		x, y match.Ordinal
	}{
		{match.AttrCleanliness, pa.Cleanliness, pb.Cleanliness},
		{match.AttrPets, pa.Pets, pb.Pets},
		{match.AttrRoomType, pa.RoomType, pb.RoomType},
		{match.AttrSleepSchedule, pa.SleepSchedule, pb.SleepSchedule},
		{match.AttrNoiseTolerance, pa.NoiseTolerance, pb.NoiseTolerance},
		{match.AttrSocialness, pa.Socialness, pb.Socialness},
	}
	for _, e := range enums {
		sim, err := attributes.EnumSimilarity(e.x, e.y)
		if err != nil {
			return nil, err
		}
		out[e.attr] = sim
	}

	out[match.AttrSmoking] = attributes.FromDistance(attributes.BoolDistance(pa.Smoking, pb.Smoking))
	out[match.AttrRoommateCount] = attributes.FromDistance(
		attributes.NumericDistance(float64(pa.RoommateCount), float64(pb.RoommateCount)))
	out[match.AttrLeaseMonths] = attributes.FromDistance(
		attributes.NumericDistance(float64(pa.LeaseMonths), float64(pb.LeaseMonths)))
	out[match.AttrHobbies] = attributes.TextSimilarity(pa.Hobbies, pb.Hobbies)
	out[match.AttrMusic] = attributes.TextSimilarity(pa.Music, pb.Music)

	out[match.AttrAge] = attributes.AgeSimilarity(a.Person.BirthDate, b.Person.BirthDate)
	out[match.AttrMoveIn] = attributes.DateSimilarity(pa.MoveIn, pb.MoveIn)
	out[match.AttrUniversity] = attributes.TextSimilarity(a.Person.University, b.Person.University)
	out[match.AttrOffice] = attributes.GeoSimilarity(a.Person.Office, b.Person.Office)

	return out, nil
}
