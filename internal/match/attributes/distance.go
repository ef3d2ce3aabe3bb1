// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package attributes computes per-attribute distances between two records and
// converts them into similarities.
//
// Every function is pure and safe for concurrent use. Distances are in
// [0, inf) except free text, which is bounded in [0, 1].
package attributes

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/roommatch/internal/match"
)

// EarthRadiusKm is the sphere radius used by GeoDistance.
const EarthRadiusKm = 6371.0

const (
	hoursPerDay  = 24.0
	daysPerYear  = 365.25
	degToRadians = math.Pi / 180.0
)

// EnumDistance returns the absolute rank difference of two ordinal values.
// Values outside their known set return match.ErrInvalidAttribute.
func EnumDistance(a, b match.Ordinal) (float64, error) {
	ra, err := a.Rank()
	if err != nil {
		return 0, fmt.Errorf("enum distance: %w", err)
	}
	rb, err := b.Rank()
	if err != nil {
		return 0, fmt.Errorf("enum distance: %w", err)
	}
	return math.Abs(float64(ra - rb)), nil
}

// BoolDistance returns 0 if a equals b, else 1.
func BoolDistance(a, b bool) float64 {
	if a == b {
		return 0
	}
	return 1
}

// NumericDistance returns |a - b|.
func NumericDistance(a, b float64) float64 {
	return math.Abs(a - b)
}

// GeoDistance returns the great-circle distance in kilometers between two
// points using the haversine formula.
func GeoDistance(a, b match.GeoPoint) float64 {
	lat1 := a.Lat * degToRadians
	lat2 := b.Lat * degToRadians
	dLat := (b.Lat - a.Lat) * degToRadians
	dLon := (b.Lon - a.Lon) * degToRadians

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h slightly above 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DateDistance returns the absolute difference in days between a and b.
func DateDistance(a, b time.Time) float64 {
	return math.Abs(b.Sub(a).Hours()) / hoursPerDay
}

// AgeDistance returns the absolute difference in years between two birth dates.
func AgeDistance(a, b time.Time) float64 {
	return DateDistance(a, b) / daysPerYear
}
