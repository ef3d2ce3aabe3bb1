// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package matchtest provides record fixtures shared by matching tests.
package matchtest

import (
	"time"

	"github.com/tomtom215/roommatch/internal/match"
)

// UniformWeights returns w for every user-tunable attribute.
func UniformWeights(w float64) match.Weights {
	out := make(match.Weights)
	for _, attr := range match.UserAttributes() {
		out[attr] = w
	}
	return out
}

// Record returns a valid baseline record with the given id.
func Record(id int64) match.Record {
	return match.Record{
		Person: match.Person{
			ID:         id,
			Gender:     "female",
			BirthDate:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			University: "State University",
		},
		Profile: match.Profile{
			Cleanliness:    match.CleanlinessClean,
			Pets:           match.PetsOpenTo,
			RoomType:       match.RoomPrivate,
			SleepSchedule:  match.SleepRegular,
			NoiseTolerance: match.NoiseQuiet,
			Socialness:     match.SocialBalanced,
			RoommateCount:  1,
			LeaseMonths:    12,
			MoveIn:         time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Hobbies:        "hiking reading cooking",
			Music:          "jazz indie",
			Weights:        UniformWeights(0.5),
		},
	}
}

// With returns a copy of r after applying each mutation.
//
//nolint:gocritic // fixtures are passed by value
func With(r match.Record, mutations ...func(*match.Record)) match.Record {
	r.Profile.Weights = r.Profile.Weights.Clone()
	for _, m := range mutations {
		m(&r)
	}
	return r
}

// Population returns n baseline records with ids 1..n.
func Population(n int) []match.Record {
	out := make([]match.Record, n)
	for i := range out {
		out[i] = Record(int64(i + 1))
	}
	return out
}
