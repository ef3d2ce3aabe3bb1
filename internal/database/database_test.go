// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/matchtest"
	"github.com/tomtom215/roommatch/internal/validation"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections can
// hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func seedRecords(t *testing.T, db *DB, records ...match.Record) {
	t.Helper()
	if err := db.InsertRecords(context.Background(), records); err != nil {
		t.Fatalf("InsertRecords() error = %v", err)
	}
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	for _, table := range []string{tablePeople, tableProfiles, tableWeights, tableRejections} {
		var n int
		if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestNewFileDatabase(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "roommatch.duckdb")
	db, err := New(&config.DatabaseConfig{Path: path, Threads: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.UpsertRecord(context.Background(), matchtest.Record(1)); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(&config.DatabaseConfig{Path: path, Threads: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Record(context.Background(), 1); err != nil {
		t.Errorf("Record(1) after reopen error = %v", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	want := matchtest.With(matchtest.Record(7), func(r *match.Record) {
		r.Person.Name = "Grace"
		r.Person.Office = &match.GeoPoint{Lat: 40.71, Lon: -74.0}
		r.Person.FriendRequests = 2
		r.Profile.Smoking = true
		r.Profile.RoommateCount = 3
		r.Profile.Weights[match.AttrPets] = 0.9
	})
	seedRecords(t, db, want)

	got, err := db.Record(ctx, 7)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if got.Person.Name != "Grace" || got.Person.Gender != want.Person.Gender {
		t.Errorf("person = %+v, want %+v", got.Person, want.Person)
	}
	if !got.Person.BirthDate.Equal(want.Person.BirthDate) {
		t.Errorf("BirthDate = %v, want %v", got.Person.BirthDate, want.Person.BirthDate)
	}
	if got.Person.Office == nil || got.Person.Office.Lat != 40.71 {
		t.Errorf("Office = %+v, want lat 40.71", got.Person.Office)
	}
	if got.Person.FriendRequests != 2 {
		t.Errorf("FriendRequests = %d, want 2", got.Person.FriendRequests)
	}
	if got.Profile.Cleanliness != want.Profile.Cleanliness || got.Profile.NoiseTolerance != want.Profile.NoiseTolerance {
		t.Errorf("profile enums = %s/%s, want %s/%s", got.Profile.Cleanliness, got.Profile.NoiseTolerance,
			want.Profile.Cleanliness, want.Profile.NoiseTolerance)
	}
	if !got.Profile.Smoking || got.Profile.RoommateCount != 3 {
		t.Errorf("profile = %+v", got.Profile)
	}
	if !got.Profile.MoveIn.Equal(want.Profile.MoveIn) {
		t.Errorf("MoveIn = %v, want %v", got.Profile.MoveIn, want.Profile.MoveIn)
	}
	if len(got.Profile.Weights) != len(want.Profile.Weights) || got.Profile.Weights[match.AttrPets] != 0.9 {
		t.Errorf("Weights = %v, want %v", got.Profile.Weights, want.Profile.Weights)
	}
	if err := validation.ValidateRecord(got); err != nil {
		t.Errorf("stored record no longer validates: %v", err)
	}
}

func TestRecordOptionalFieldsNull(t *testing.T) {
	db := setupTestDB(t)

	rec := matchtest.With(matchtest.Record(3), func(r *match.Record) {
		r.Person.BirthDate = time.Time{}
		r.Person.University = ""
		r.Profile.MoveIn = time.Time{}
		r.Profile.Hobbies = ""
	})
	seedRecords(t, db, rec)

	got, err := db.Record(context.Background(), 3)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !got.Person.BirthDate.IsZero() || !got.Profile.MoveIn.IsZero() {
		t.Errorf("dates = %v / %v, want zero", got.Person.BirthDate, got.Profile.MoveIn)
	}
	if got.Person.Office != nil {
		t.Errorf("Office = %+v, want nil", got.Person.Office)
	}
	if got.Profile.Hobbies != "" {
		t.Errorf("Hobbies = %q, want empty", got.Profile.Hobbies)
	}
}

func TestRecordNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Record(context.Background(), 404)
	if !errors.Is(err, match.ErrNotFound) {
		t.Errorf("Record() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertReplacesWeights(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, matchtest.Record(1))
	updated := matchtest.With(matchtest.Record(1), func(r *match.Record) {
		r.Profile.Weights = match.Weights{match.AttrMusic: 1}
	})
	if err := db.UpsertRecord(ctx, updated); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}

	got, err := db.Record(ctx, 1)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(got.Profile.Weights) != 1 || got.Profile.Weights[match.AttrMusic] != 1 {
		t.Errorf("Weights = %v, want {music: 1}", got.Profile.Weights)
	}
}

func TestPopulationAndCandidates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, matchtest.Record(3), matchtest.Record(1), matchtest.Record(2), matchtest.Record(4))
	if err := db.SetActive(ctx, 4, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	pop, err := db.Population(ctx)
	if err != nil {
		t.Fatalf("Population() error = %v", err)
	}
	assertIDs(t, "Population()", pop, 1, 2, 3)
	for _, r := range pop {
		if len(r.Profile.Weights) == 0 {
			t.Errorf("record %d has no weights", r.ID())
		}
	}

	cands, err := db.Candidates(ctx, 2)
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	assertIDs(t, "Candidates(2)", cands, 1, 3)

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestRecordsPreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, matchtest.Population(5)...)

	got, err := db.Records(ctx, []int64{4, 1, 5})
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	assertIDs(t, "Records()", got, 4, 1, 5)

	_, err = db.Records(ctx, []int64{1, 99})
	if !errors.Is(err, match.ErrNotFound) {
		t.Errorf("Records() with unknown id error = %v, want ErrNotFound", err)
	}
}

func TestRejections(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []match.Rejection{
		{FromID: 1, ToID: 2, Status: match.StatusRejected, CreatedAt: t0},
		{FromID: 3, ToID: 1, Status: match.StatusDeclined, CreatedAt: t0.Add(time.Hour)},
		{FromID: 2, ToID: 3, Status: match.StatusRejected, CreatedAt: t0},
	} {
		if err := db.AddRejection(ctx, r); err != nil {
			t.Fatalf("AddRejection(%+v) error = %v", r, err)
		}
	}

	got, err := db.Rejections(ctx, 1)
	if err != nil {
		t.Fatalf("Rejections() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Rejections(1) = %+v, want 2 entries", got)
	}
	if got[0].ToID != 2 || got[1].FromID != 3 || got[1].Status != match.StatusDeclined {
		t.Errorf("Rejections(1) = %+v", got)
	}
}

func TestAddRejectionInvalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rej  match.Rejection
	}{
		{"unknown status", match.Rejection{FromID: 1, ToID: 2, Status: "MAYBE"}},
		{"self", match.Rejection{FromID: 1, ToID: 1, Status: match.StatusRejected}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.AddRejection(ctx, tt.rej); !errors.Is(err, match.ErrInvalidAttribute) {
				t.Errorf("AddRejection() error = %v, want ErrInvalidAttribute", err)
			}
		})
	}
}

func TestIncrementFriendRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, matchtest.Record(1))
	for i := 0; i < 3; i++ {
		if err := db.IncrementFriendRequests(ctx, 1); err != nil {
			t.Fatalf("IncrementFriendRequests() error = %v", err)
		}
	}
	got, err := db.Record(ctx, 1)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got.Person.FriendRequests != 3 {
		t.Errorf("FriendRequests = %d, want 3", got.Person.FriendRequests)
	}

	if err := db.IncrementFriendRequests(ctx, 42); !errors.Is(err, match.ErrNotFound) {
		t.Errorf("IncrementFriendRequests(42) error = %v, want ErrNotFound", err)
	}
}

func TestChunkIDs(t *testing.T) {
	ids := make([]int64, 1201)
	chunks := chunkIDs(ids, 500)
	if len(chunks) != 3 || len(chunks[0]) != 500 || len(chunks[2]) != 201 {
		t.Errorf("chunkIDs() sizes = %d chunks", len(chunks))
	}
	if got := chunkIDs(nil, 500); len(got) != 0 {
		t.Errorf("chunkIDs(nil) = %v, want none", got)
	}
}

func assertIDs(t *testing.T, what string, records []match.Record, want ...int64) {
	t.Helper()
	if len(records) != len(want) {
		t.Fatalf("%s returned %d records, want %v", what, len(records), want)
	}
	for i, id := range want {
		if records[i].ID() != id {
			t.Errorf("%s[%d] = %d, want %d", what, i, records[i].ID(), id)
		}
	}
}
