// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package attributes

import (
	"time"

	"github.com/tomtom215/roommatch/internal/match"
)

// Neutral is the similarity used when one side lacks the data to compare.
const Neutral = 0.5

// FromDistance converts a distance in [0, inf) into a similarity in (0, 1].
func FromDistance(d float64) float64 {
	return 1 / (1 + d)
}

// TextSimilarity returns 1 - TextDistance(a, b).
func TextSimilarity(a, b string) float64 {
	return 1 - TextDistance(a, b)
}

// GeoSimilarity converts the haversine distance between a and b into a
// similarity. Either point missing yields Neutral.
func GeoSimilarity(a, b *match.GeoPoint) float64 {
	if a == nil || b == nil {
		return Neutral
	}
	return FromDistance(GeoDistance(*a, *b))
}

// DateSimilarity compares two calendar dates. A zero date yields Neutral.
func DateSimilarity(a, b time.Time) float64 {
	if a.IsZero() || b.IsZero() {
		return Neutral
	}
	return FromDistance(DateDistance(a, b))
}

// AgeSimilarity compares two birth dates in years. A zero date yields Neutral.
func AgeSimilarity(a, b time.Time) float64 {
	if a.IsZero() || b.IsZero() {
		return Neutral
	}
	return FromDistance(AgeDistance(a, b))
}

// EnumSimilarity converts an ordinal rank difference into a similarity.
func EnumSimilarity(a, b match.Ordinal) (float64, error) {
	d, err := EnumDistance(a, b)
	if err != nil {
		return 0, err
	}
	return FromDistance(d), nil
}
