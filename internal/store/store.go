// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package store persists adjusted attribute weights and feedback history in
// BadgerDB.
//
// Keys:
//
//	weights:<id>                        JSON match.Weights
//	feedback:<id>:<unix-nanos>:<entry>  JSON match.FeedbackEntry
//
// Timestamps are zero-padded so that lexical key order is chronological.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/match"
)

// Key prefixes for BadgerDB storage
const (
	weightsKeyPrefix  = "weights:"
	feedbackKeyPrefix = "feedback:"
)

// WeightStore implements the engine's weight persistence on BadgerDB.
type WeightStore struct {
	db     *badger.DB
	owned  bool
	logger zerolog.Logger
}

// Open opens the Badger database described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *config.StoreConfig, logger zerolog.Logger) (*WeightStore, error) {
	logger = logger.With().Str("component", "weight_store").Logger()

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(newBadgerLogger(logger))

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for weights: %w", err)
	}
	return &WeightStore{db: db, owned: true, logger: logger}, nil
}

// New wraps an already open database. Close leaves it open.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(db *badger.DB, logger zerolog.Logger) *WeightStore {
	return &WeightStore{db: db, logger: logger.With().Str("component", "weight_store").Logger()}
}

// Close closes the database if Open created it.
func (s *WeightStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying BadgerDB.
func (s *WeightStore) DB() *badger.DB {
	return s.db
}

func weightsKey(id int64) []byte {
	return []byte(weightsKeyPrefix + strconv.FormatInt(id, 10))
}

func feedbackPrefix(id int64) []byte {
	return []byte(feedbackKeyPrefix + strconv.FormatInt(id, 10) + ":")
}

func feedbackKey(entry *match.FeedbackEntry) []byte {
	return []byte(fmt.Sprintf("%s%d:%020d:%s",
		feedbackKeyPrefix, entry.SubjectID, entry.CreatedAt.UnixNano(), entry.ID))
}

// LoadWeights returns the stored weights for id, or match.ErrNotFound.
func (s *WeightStore) LoadWeights(ctx context.Context, id int64) (match.Weights, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var weights match.Weights
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(weightsKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("weights %d: %w", id, match.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get weights: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &weights)
		})
	})
	if err != nil {
		return nil, err
	}
	return weights, nil
}

// SaveWeights replaces the stored weights for id.
func (s *WeightStore) SaveWeights(ctx context.Context, id int64, weights match.Weights) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(weightsKey(id), data); err != nil {
			return fmt.Errorf("set weights: %w", err)
		}
		return nil
	})
}

// DeleteWeights removes stored weights so the profile's base weights apply
// again. Deleting absent weights is not an error.
func (s *WeightStore) DeleteWeights(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(weightsKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete weights: %w", err)
		}
		return nil
	})
}

// AppendFeedback stores one feedback entry. Missing ID and CreatedAt are
// filled in.
//
//nolint:gocritic // entry passed by value as an immutable record
func (s *WeightStore) AppendFeedback(ctx context.Context, entry match.FeedbackEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(feedbackKey(&entry), data); err != nil {
			return fmt.Errorf("set feedback: %w", err)
		}
		return nil
	})
}

// ListFeedback returns up to limit feedback entries applied to a subject,
// newest first. A non-positive limit returns all entries.
func (s *WeightStore) ListFeedback(ctx context.Context, subjectID int64, limit int) ([]match.FeedbackEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []match.FeedbackEntry
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := feedbackPrefix(subjectID)

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the last key <= the seek key.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry match.FeedbackEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode feedback: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback for %d: %w", subjectID, err)
	}
	return entries, nil
}
