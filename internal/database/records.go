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

const selectRecords = `
	SELECT p.id, p.name, p.gender, p.birth_date, p.university, p.office_lat, p.office_lon, p.friend_requests,
		f.cleanliness, f.pets, f.room_type, f.sleep_schedule, f.noise_tolerance, f.socialness, f.smoking,
		f.roommate_count, f.lease_months, f.move_in, f.hobbies, f.music
	FROM people p
	JOIN profiles f ON f.person_id = p.id`

func scanRecord(rows *sql.Rows) (match.Record, error) {
	var (
		r                        match.Record
		name, gender, university sql.NullString
		hobbies, music           sql.NullString
		birthDate, moveIn        sql.NullTime
		officeLat, officeLon     sql.NullFloat64
		cleanliness, pets        string
		roomType, sleep          string
		noise, social            string
	)

	err := rows.Scan(
		&r.Person.ID, &name, &gender, &birthDate, &university, &officeLat, &officeLon, &r.Person.FriendRequests,
		&cleanliness, &pets, &roomType, &sleep, &noise, &social, &r.Profile.Smoking,
		&r.Profile.RoommateCount, &r.Profile.LeaseMonths, &moveIn, &hobbies, &music,
	)
	if err != nil {
		return match.Record{}, fmt.Errorf("scan record: %w", err)
	}

	r.Person.Name = name.String
	r.Person.Gender = gender.String
	r.Person.University = university.String
	if birthDate.Valid {
		r.Person.BirthDate = birthDate.Time.UTC()
	}
	if officeLat.Valid && officeLon.Valid {
		r.Person.Office = &match.GeoPoint{Lat: officeLat.Float64, Lon: officeLon.Float64}
	}

	r.Profile.Cleanliness = match.Cleanliness(cleanliness)
	r.Profile.Pets = match.Pets(pets)
	r.Profile.RoomType = match.RoomType(roomType)
	r.Profile.SleepSchedule = match.SleepSchedule(sleep)
	r.Profile.NoiseTolerance = match.NoiseTolerance(noise)
	r.Profile.Socialness = match.Socialness(social)
	if moveIn.Valid {
		r.Profile.MoveIn = moveIn.Time.UTC()
	}
	r.Profile.Hobbies = hobbies.String
	r.Profile.Music = music.String

	return r, nil
}

// Population returns every active person with a profile, ordered by id.
func (db *DB) Population(ctx context.Context) (records []match.Record, err error) {
	start := time.Now()
	defer func() { observe("population", tablePeople, start, err) }()

	records, err = queryAndScan(ctx, db.conn, selectRecords+` WHERE p.active ORDER BY p.id`, nil, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query population: %w", err)
	}
	if err := db.attachWeights(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Records returns the records with the given ids in the given order.
// A missing id yields match.ErrNotFound.
func (db *DB) Records(ctx context.Context, ids []int64) (records []match.Record, err error) {
	start := time.Now()
	defer func() { observe("records", tablePeople, start, err) }()

	byID := make(map[int64]match.Record, len(ids))
	for _, chunk := range chunkIDs(ids, maxInListSize) {
		marks, args := placeholders(chunk)
		rows, err := queryAndScan(ctx, db.conn, selectRecords+` WHERE p.id IN (`+marks+`)`, args, scanRecord)
		if err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}
		for _, r := range rows {
			byID[r.ID()] = r
		}
	}

	records = make([]match.Record, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("record %d: %w", id, match.ErrNotFound)
		}
		records = append(records, r)
	}

	if err := db.attachWeights(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Record returns one person's record.
func (db *DB) Record(ctx context.Context, id int64) (record match.Record, err error) {
	start := time.Now()
	defer func() { observe("record", tablePeople, start, err) }()

	records, err := queryAndScan(ctx, db.conn, selectRecords+` WHERE p.id = ?`, []interface{}{id}, scanRecord)
	if err != nil {
		return match.Record{}, notFound(err, "record", id)
	}
	if len(records) == 0 {
		return match.Record{}, notFound(sql.ErrNoRows, "record", id)
	}
	if err := db.attachWeights(ctx, records); err != nil {
		return match.Record{}, err
	}
	return records[0], nil
}

// Candidates returns the active people other than the subject, ordered by id.
// Rejections are not applied here.
func (db *DB) Candidates(ctx context.Context, subjectID int64) (records []match.Record, err error) {
	start := time.Now()
	defer func() { observe("candidates", tablePeople, start, err) }()

	records, err = queryAndScan(ctx, db.conn,
		selectRecords+` WHERE p.active AND p.id <> ? ORDER BY p.id`, []interface{}{subjectID}, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query candidates for %d: %w", subjectID, err)
	}
	if err := db.attachWeights(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Rejections returns the signals involving the subject in either direction,
// oldest first.
func (db *DB) Rejections(ctx context.Context, subjectID int64) (rejections []match.Rejection, err error) {
	start := time.Now()
	defer func() { observe("rejections", tableRejections, start, err) }()

	rejections, err = queryAndScan(ctx, db.conn, `
		SELECT from_id, to_id, status, created_at
		FROM match_rejections
		WHERE from_id = ? OR to_id = ?
		ORDER BY created_at, from_id, to_id`,
		[]interface{}{subjectID, subjectID},
		func(rows *sql.Rows) (match.Rejection, error) {
			var r match.Rejection
			var status string
			if err := rows.Scan(&r.FromID, &r.ToID, &status, &r.CreatedAt); err != nil {
				return r, fmt.Errorf("scan rejection: %w", err)
			}
			r.Status = match.RejectionStatus(status)
			r.CreatedAt = r.CreatedAt.UTC()
			return r, nil
		})
	if err != nil {
		return nil, fmt.Errorf("query rejections for %d: %w", subjectID, err)
	}
	return rejections, nil
}

// attachWeights loads profile_weights for records and sets each profile's
// Weights. Records without rows get an empty map.
func (db *DB) attachWeights(ctx context.Context, records []match.Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observe("weights", tableWeights, start, err) }()

	ids := make([]int64, len(records))
	index := make(map[int64][]int, len(records))
	for i := range records {
		ids[i] = records[i].ID()
		index[ids[i]] = append(index[ids[i]], i)
		records[i].Profile.Weights = make(match.Weights)
	}

	type weightRow struct {
		id     int64
		attr   string
		weight float64
	}

	for _, chunk := range chunkIDs(ids, maxInListSize) {
		marks, args := placeholders(chunk)
		rows, err := queryAndScan(ctx, db.conn,
			`SELECT person_id, attribute, weight FROM profile_weights WHERE person_id IN (`+marks+`)`,
			args,
			func(rows *sql.Rows) (weightRow, error) {
				var w weightRow
				err := rows.Scan(&w.id, &w.attr, &w.weight)
				return w, err
			})
		if err != nil {
			return fmt.Errorf("query weights: %w", err)
		}
		for _, w := range rows {
			for _, i := range index[w.id] {
				records[i].Profile.Weights[match.Attribute(w.attr)] = w.weight
			}
		}
	}
	return nil
}

// Count returns the number of active people with a profile.
func (db *DB) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { observe("count", tablePeople, start, err) }()

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM people p JOIN profiles f ON f.person_id = p.id WHERE p.active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return n, nil
}
