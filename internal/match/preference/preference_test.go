// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package preference

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/matchtest"
	"github.com/tomtom215/roommatch/internal/match/similarity"
)

// tableScorer returns fixed similarities keyed by (source, target) id.
type tableScorer struct {
	mu    sync.Mutex
	calls int
	sims  map[[2]int64]float64
	err   error
}

func (s *tableScorer) Score(a, b match.Record) (similarity.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return similarity.Result{}, s.err
	}
	return similarity.Result{Similarity: s.sims[[2]int64{a.ID(), b.ID()}]}, nil
}

func TestBuildRanksDescending(t *testing.T) {
	t.Parallel()

	scorer := &tableScorer{sims: map[[2]int64]float64{
		{1, 2}: 0.3, {1, 3}: 0.9, {1, 4}: 0.6,
		{2, 1}: 0.5, {2, 3}: 0.5, {2, 4}: 0.5,
		{3, 1}: 0.1, {3, 2}: 0.2, {3, 4}: 0.3,
		{4, 1}: 0.8, {4, 2}: 0.7, {4, 3}: 0.6,
	}}

	m, err := NewBuilder(scorer, 4).Build(context.Background(), matchtest.Population(4))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", m.Len())
	}
	if scorer.calls != 12 {
		t.Errorf("scorer called %d times, want 12", scorer.calls)
	}

	tests := []struct {
		id   int64
		want []int64
	}{
		{1, []int64{3, 4, 2}},
		{2, []int64{1, 3, 4}}, // ties keep arena order
		{3, []int64{4, 2, 1}},
		{4, []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		i, ok := m.IndexOf(tt.id)
		if !ok {
			t.Fatalf("IndexOf(%d) not found", tt.id)
		}
		prefs := m.Participant(i).Preferences
		if len(prefs) != len(tt.want) {
			t.Fatalf("participant %d has %d preferences", tt.id, len(prefs))
		}
		for k, want := range tt.want {
			if prefs[k].TargetID != want {
				t.Errorf("participant %d preference[%d] = %d, want %d", tt.id, k, prefs[k].TargetID, want)
			}
		}
	}

	if got := m.Similarity(0, 2); got != 0.9 {
		t.Errorf("Similarity(0, 2) = %v, want 0.9", got)
	}
	if got := m.Similarity(1, 1); got != 0 {
		t.Errorf("Similarity(1, 1) = %v, want 0", got)
	}
}

func TestBuildCapacityClampedToOne(t *testing.T) {
	t.Parallel()

	records := matchtest.Population(2)
	records[0].Profile.RoommateCount = 0
	records[1].Profile.RoommateCount = 3

	m, err := NewBuilder(&tableScorer{}, 1).Build(context.Background(), records)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := m.Participant(0).Capacity; got != 1 {
		t.Errorf("capacity = %d, want 1", got)
	}
	if got := m.Participant(1).Capacity; got != 3 {
		t.Errorf("capacity = %d, want 3", got)
	}
}

func TestBuildScorerError(t *testing.T) {
	t.Parallel()

	scorer := &tableScorer{err: match.ErrZeroWeightSum}
	_, err := NewBuilder(scorer, 2).Build(context.Background(), matchtest.Population(3))
	if !errors.Is(err, match.ErrZeroWeightSum) {
		t.Errorf("Build() error = %v, want ErrZeroWeightSum", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(&tableScorer{}, 1).Build(ctx, matchtest.Population(3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuildWithRealScorer(t *testing.T) {
	t.Parallel()

	records := matchtest.Population(3)
	records[2].Profile.Cleanliness = match.CleanlinessVeryMessy

	scorer := similarity.NewScorer(match.DefaultConfig().Scoring)
	m, err := NewBuilder(scorer, 2).Build(context.Background(), records)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := m.Participant(0).Preferences[0].TargetID; got != 2 {
		t.Errorf("top preference of 1 = %d, want 2", got)
	}
}

func TestNewMatrixDuplicateID(t *testing.T) {
	t.Parallel()

	_, err := NewMatrix([]int64{1, 1}, []int{1, 1}, [][]float64{{0, 1}, {1, 0}})
	if !errors.Is(err, match.ErrDuplicateParticipant) {
		t.Errorf("NewMatrix() error = %v, want ErrDuplicateParticipant", err)
	}
}

func TestNewMatrixShapeMismatch(t *testing.T) {
	t.Parallel()

	if _, err := NewMatrix([]int64{1, 2}, []int{1}, [][]float64{{0, 1}, {1, 0}}); err == nil {
		t.Error("expected error for capacity length mismatch")
	}
	if _, err := NewMatrix([]int64{1, 2}, []int{1, 1}, [][]float64{{0, 1}, {1}}); err == nil {
		t.Error("expected error for short row")
	}
}
