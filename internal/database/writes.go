// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/roommatch/internal/match"
)

// UpsertRecord inserts or replaces one person, their profile and base weights.
//
//nolint:gocritic // record passed by value as a snapshot
func (db *DB) UpsertRecord(ctx context.Context, r match.Record) error {
	return db.InsertRecords(ctx, []match.Record{r})
}

// InsertRecords inserts or replaces records in a single transaction.
func (db *DB) InsertRecords(ctx context.Context, records []match.Record) (err error) {
	start := time.Now()
	defer func() { observe("upsert", tablePeople, start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range records {
			if err := upsertRecordTx(ctx, tx, &records[i]); err != nil {
				return fmt.Errorf("upsert record %d: %w", records[i].ID(), err)
			}
		}
		return nil
	})
}

func upsertRecordTx(ctx context.Context, tx *sql.Tx, r *match.Record) error {
	var lat, lon sql.NullFloat64
	if r.Person.Office != nil {
		lat = sql.NullFloat64{Float64: r.Person.Office.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: r.Person.Office.Lon, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO people
			(id, name, gender, birth_date, university, office_lat, office_lon, friend_requests, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE, current_timestamp)`,
		r.Person.ID, nullString(r.Person.Name), nullString(r.Person.Gender), nullTime(r.Person.BirthDate),
		nullString(r.Person.University), lat, lon, r.Person.FriendRequests)
	if err != nil {
		return fmt.Errorf("people: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles
			(person_id, cleanliness, pets, room_type, sleep_schedule, noise_tolerance, socialness,
			 smoking, roommate_count, lease_months, move_in, hobbies, music)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Person.ID, string(r.Profile.Cleanliness), string(r.Profile.Pets), string(r.Profile.RoomType),
		string(r.Profile.SleepSchedule), string(r.Profile.NoiseTolerance), string(r.Profile.Socialness),
		r.Profile.Smoking, r.Profile.RoommateCount, r.Profile.LeaseMonths, nullTime(r.Profile.MoveIn),
		nullString(r.Profile.Hobbies), nullString(r.Profile.Music))
	if err != nil {
		return fmt.Errorf("profiles: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_weights WHERE person_id = ?`, r.Person.ID); err != nil {
		return fmt.Errorf("clear weights: %w", err)
	}
	for _, attr := range r.Profile.Weights.Keys() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO profile_weights (person_id, attribute, weight) VALUES (?, ?, ?)`,
			r.Person.ID, string(attr), r.Profile.Weights[attr])
		if err != nil {
			return fmt.Errorf("weight %s: %w", attr, err)
		}
	}
	return nil
}

// AddRejection records a directional rejection, replacing any earlier signal
// between the same ordered pair. A zero CreatedAt is stamped with the
// current time.
//
//nolint:gocritic // small value type
func (db *DB) AddRejection(ctx context.Context, r match.Rejection) (err error) {
	start := time.Now()
	defer func() { observe("insert", tableRejections, start, err) }()

	switch r.Status {
	case match.StatusRejected, match.StatusDeclined:
	default:
		return fmt.Errorf("rejection status: %w", &match.InvalidAttributeError{Attribute: "status", Value: string(r.Status)})
	}
	if r.FromID == r.ToID {
		return fmt.Errorf("rejection %d -> %d: %w", r.FromID, r.ToID,
			&match.InvalidAttributeError{Attribute: "to_id", Value: fmt.Sprint(r.ToID)})
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO match_rejections (from_id, to_id, status, created_at)
		VALUES (?, ?, ?, ?)`,
		r.FromID, r.ToID, string(r.Status), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rejection: %w", err)
	}
	return nil
}

// IncrementFriendRequests adds one received friend request to a person.
func (db *DB) IncrementFriendRequests(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { observe("update", tablePeople, start, err) }()

	return db.updatePerson(ctx, id, `UPDATE people SET friend_requests = friend_requests + 1 WHERE id = ?`, id)
}

// SetActive includes or excludes a person from population and candidate reads.
func (db *DB) SetActive(ctx context.Context, id int64, active bool) (err error) {
	start := time.Now()
	defer func() { observe("update", tablePeople, start, err) }()

	return db.updatePerson(ctx, id, `UPDATE people SET active = ? WHERE id = ?`, active, id)
}

func (db *DB) updatePerson(ctx context.Context, id int64, query string, args ...interface{}) error {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update person %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person %d: %w", id, err)
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, "person", id)
	}
	return nil
}
