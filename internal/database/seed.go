// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package database

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/tomtom215/roommatch/internal/match"
)

var (
	seedFirstNames = []string{
		"Alice", "Bob", "Charlie", "David", "Emma", "Frank", "Grace", "Henry",
		"Isabella", "Jack", "Kate", "Liam", "Mia", "Noah", "Olivia", "Priya",
	}
	seedGenders      = []string{"female", "male", "nonbinary"}
	seedUniversities = []string{"State University", "Tech Institute", "City College", "Arts Academy"}
	seedHobbies      = []string{"hiking", "reading", "cooking", "gaming", "climbing", "yoga", "painting", "cycling", "chess"}
	seedMusic        = []string{"jazz", "indie", "rock", "classical", "hiphop", "electronic", "folk", "pop"}

	// Offices around one metro area.
	seedOffices = []match.GeoPoint{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.7580, Lon: -73.9855},
		{Lat: 40.6782, Lon: -73.9442},
		{Lat: 40.7282, Lon: -73.7949},
	}
)

// GenerateSeedPopulation returns n valid records with ids 1..n. The same
// seed always produces the same population.
func GenerateSeedPopulation(n int, seed int64) []match.Record {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // demo data, not security

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	records := make([]match.Record, n)
	for i := range records {
		id := int64(i + 1)

		office := seedOffices[rng.Intn(len(seedOffices))]
		weights := make(match.Weights)
		for _, attr := range match.UserAttributes() {
			// Two decimals keep weights readable in CLI output.
			weights[attr] = float64(10+rng.Intn(91)) / 100
		}

		records[i] = match.Record{
			Person: match.Person{
				ID:             id,
				Name:           fmt.Sprintf("%s %d", pick(rng, seedFirstNames), id),
				Gender:         pick(rng, seedGenders),
				BirthDate:      time.Date(1990+rng.Intn(14), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC),
				University:     pick(rng, seedUniversities),
				Office:         &office,
				FriendRequests: rng.Intn(4),
			},
			Profile: match.Profile{
				Cleanliness:    pick(rng, match.CleanlinessValues()),
				Pets:           pick(rng, match.PetsValues()),
				RoomType:       pick(rng, match.RoomTypeValues()),
				SleepSchedule:  pick(rng, match.SleepScheduleValues()),
				NoiseTolerance: pick(rng, match.NoiseToleranceValues()),
				Socialness:     pick(rng, match.SocialnessValues()),
				Smoking:        rng.Intn(5) == 0,
				RoommateCount:  1 + rng.Intn(3),
				LeaseMonths:    []int{6, 9, 12, 18, 24}[rng.Intn(5)],
				MoveIn:         base.AddDate(0, 0, rng.Intn(120)),
				Hobbies:        pickWords(rng, seedHobbies, 3),
				Music:          pickWords(rng, seedMusic, 2),
				Weights:        weights,
			},
		}
	}
	return records
}

// Seed inserts a generated population of n records.
func (db *DB) Seed(ctx context.Context, n int, seed int64) error {
	records := GenerateSeedPopulation(n, seed)
	if err := db.InsertRecords(ctx, records); err != nil {
		return fmt.Errorf("seed population: %w", err)
	}
	db.logger.Info().Int("records", n).Int64("seed", seed).Msg("Seeded population")
	return nil
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.Intn(len(values))]
}

// pickWords returns up to k distinct words joined by spaces.
func pickWords(rng *rand.Rand, words []string, k int) string {
	perm := rng.Perm(len(words))
	count := 1 + rng.Intn(k)
	out := make([]string, 0, count)
	for _, i := range perm[:count] {
		out = append(out, words[i])
	}
	return strings.Join(out, " ")
}
