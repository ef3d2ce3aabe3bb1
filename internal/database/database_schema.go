// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package database

import (
	"context"
	"fmt"
	"time"
)

// Table names, also used as metric labels.
const (
	tablePeople     = "people"
	tableProfiles   = "profiles"
	tableWeights    = "profile_weights"
	tableRejections = "match_rejections"
)

// schemaContext returns a context for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// createTables creates all tables and indexes if they don't exist.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS people (
			id BIGINT PRIMARY KEY,
			name VARCHAR,
			gender VARCHAR,
			birth_date DATE,
			university VARCHAR,
			office_lat DOUBLE,
			office_lon DOUBLE,
			friend_requests INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			person_id BIGINT PRIMARY KEY,
			cleanliness VARCHAR NOT NULL,
			pets VARCHAR NOT NULL,
			room_type VARCHAR NOT NULL,
			sleep_schedule VARCHAR NOT NULL,
			noise_tolerance VARCHAR NOT NULL,
			socialness VARCHAR NOT NULL,
			smoking BOOLEAN NOT NULL DEFAULT FALSE,
			roommate_count INTEGER NOT NULL DEFAULT 1,
			lease_months INTEGER NOT NULL DEFAULT 0,
			move_in DATE,
			hobbies VARCHAR,
			music VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS profile_weights (
			person_id BIGINT NOT NULL,
			attribute VARCHAR NOT NULL,
			weight DOUBLE NOT NULL,
			PRIMARY KEY (person_id, attribute)
		)`,
		`CREATE TABLE IF NOT EXISTS match_rejections (
			from_id BIGINT NOT NULL,
			to_id BIGINT NOT NULL,
			status VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (from_id, to_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_to ON match_rejections(to_id)`,
	}
}
