// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package database provides the DuckDB-backed data provider for the matching
engine.

# Schema

  - people: identity attributes, friend request counter, active flag
  - profiles: housing preferences, one row per person
  - profile_weights: the owner's base attribute weights, one row per attribute
  - match_rejections: directional REJECTED and DECLINED signals

# Reads

DB implements the engine's DataProvider:

  - Population: every active person with a profile, ordered by id
  - Records: the given ids in the given order
  - Record: one person, match.ErrNotFound when absent
  - Candidates: active people other than the subject
  - Rejections: signals involving the subject in either direction

# Writes

UpsertRecord, InsertRecords, AddRejection, IncrementFriendRequests and
SetActive maintain the tables. GenerateSeedPopulation builds a deterministic
demo population.
*/
package database
