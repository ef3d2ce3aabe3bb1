// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/engine"
)

var _ engine.WeightStore = (*WeightStore)(nil)

func setupTestStore(t *testing.T) *WeightStore {
	t.Helper()

	s, err := Open(&config.StoreConfig{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestWeightsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadWeights(ctx, 1); !errors.Is(err, match.ErrNotFound) {
		t.Fatalf("LoadWeights() on empty store error = %v, want ErrNotFound", err)
	}

	want := match.Weights{match.AttrPets: 0.35, match.AttrMusic: 1}
	if err := s.SaveWeights(ctx, 1, want); err != nil {
		t.Fatalf("SaveWeights() error = %v", err)
	}

	got, err := s.LoadWeights(ctx, 1)
	if err != nil {
		t.Fatalf("LoadWeights() error = %v", err)
	}
	if len(got) != 2 || got[match.AttrPets] != 0.35 || got[match.AttrMusic] != 1 {
		t.Errorf("LoadWeights() = %v, want %v", got, want)
	}

	if _, err := s.LoadWeights(ctx, 11); !errors.Is(err, match.ErrNotFound) {
		t.Errorf("LoadWeights(11) error = %v, want ErrNotFound", err)
	}

	if err := s.DeleteWeights(ctx, 1); err != nil {
		t.Fatalf("DeleteWeights() error = %v", err)
	}
	if _, err := s.LoadWeights(ctx, 1); !errors.Is(err, match.ErrNotFound) {
		t.Errorf("LoadWeights() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteWeights(ctx, 1); err != nil {
		t.Errorf("DeleteWeights() twice error = %v", err)
	}
}

func TestFeedbackHistory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, outcome := range []match.Outcome{match.OutcomeAccepted, match.OutcomeRejected, match.OutcomeRequestSent} {
		entry := match.FeedbackEntry{
			SubjectID: 1,
			TargetID:  int64(10 + i),
			Outcome:   outcome,
			Before:    match.Weights{match.AttrPets: 0.5},
			After:     match.Weights{match.AttrPets: 0.55},
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AppendFeedback(ctx, entry); err != nil {
			t.Fatalf("AppendFeedback() error = %v", err)
		}
	}
	// Subject 12 shares a decimal prefix with subject 1.
	if err := s.AppendFeedback(ctx, match.FeedbackEntry{SubjectID: 12, TargetID: 1, Outcome: match.OutcomeAccepted}); err != nil {
		t.Fatalf("AppendFeedback() error = %v", err)
	}

	all, err := s.ListFeedback(ctx, 1, 0)
	if err != nil {
		t.Fatalf("ListFeedback() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListFeedback() = %d entries, want 3", len(all))
	}
	if all[0].TargetID != 12 || all[2].TargetID != 10 {
		t.Errorf("ListFeedback() order = %d..%d, want newest (12) first", all[0].TargetID, all[2].TargetID)
	}
	for _, e := range all {
		if e.ID == "" {
			t.Error("entry has no ID")
		}
		if e.After[match.AttrPets] != 0.55 {
			t.Errorf("entry After = %v", e.After)
		}
	}

	limited, err := s.ListFeedback(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListFeedback(limit 2) error = %v", err)
	}
	if len(limited) != 2 || limited[0].TargetID != 12 {
		t.Errorf("ListFeedback(limit 2) = %+v", limited)
	}

	other, err := s.ListFeedback(ctx, 12, 0)
	if err != nil {
		t.Fatalf("ListFeedback(12) error = %v", err)
	}
	if len(other) != 1 || other[0].CreatedAt.IsZero() {
		t.Errorf("ListFeedback(12) = %+v, want one stamped entry", other)
	}

	none, err := s.ListFeedback(ctx, 99, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("ListFeedback(99) = %v, %v, want empty", none, err)
	}
}

func TestCancelledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.SaveWeights(ctx, 1, match.Weights{match.AttrPets: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("SaveWeights() error = %v, want context.Canceled", err)
	}
	if _, err := s.LoadWeights(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadWeights() error = %v, want context.Canceled", err)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(&config.StoreConfig{Path: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SaveWeights(ctx, 5, match.Weights{match.AttrSmoking: 0.2}); err != nil {
		t.Fatalf("SaveWeights() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(&config.StoreConfig{Path: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadWeights(ctx, 5)
	if err != nil || got[match.AttrSmoking] != 0.2 {
		t.Errorf("LoadWeights() after reopen = %v, %v", got, err)
	}
}

func TestNewDoesNotOwnDB(t *testing.T) {
	owner := setupTestStore(t)
	borrowed := New(owner.DB(), zerolog.Nop())

	if err := borrowed.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := owner.SaveWeights(context.Background(), 1, match.Weights{match.AttrPets: 1}); err != nil {
		t.Errorf("shared db closed by borrower: %v", err)
	}
}
