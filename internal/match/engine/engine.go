// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package engine composes the matching pipeline behind the data-access,
// weight-store and notification collaborators.
//
// The engine owns no persistent state. Records arrive as immutable snapshots
// from a DataProvider, tuned weights are overlaid from an optional
// WeightStore, and computed outcomes are announced through an optional
// Publisher. Publication failures are logged and counted but never fail the
// operation that produced the outcome.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/cache"
	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/options"
	"github.com/tomtom215/roommatch/internal/match/preference"
	"github.com/tomtom215/roommatch/internal/match/recommend"
	"github.com/tomtom215/roommatch/internal/match/similarity"
	"github.com/tomtom215/roommatch/internal/metrics"
)

// DataProvider supplies immutable record snapshots.
// Lookups of missing records return an error wrapping match.ErrNotFound.
type DataProvider interface {
	// Population returns every record eligible for group matching.
	Population(ctx context.Context) ([]match.Record, error)

	// Records returns the records with the given ids in the given order.
	Records(ctx context.Context, ids []int64) ([]match.Record, error)

	// Record returns one record.
	Record(ctx context.Context, id int64) (match.Record, error)

	// Candidates returns the one-to-one candidates for a subject.
	Candidates(ctx context.Context, subjectID int64) ([]match.Record, error)

	// Rejections returns the rejections involving a subject.
	Rejections(ctx context.Context, subjectID int64) ([]match.Rejection, error)
}

// WeightStore persists tuned weight vectors and feedback history.
// LoadWeights returns an error wrapping match.ErrNotFound when no tuned
// vector exists.
type WeightStore interface {
	LoadWeights(ctx context.Context, id int64) (match.Weights, error)
	SaveWeights(ctx context.Context, id int64, weights match.Weights) error
	AppendFeedback(ctx context.Context, entry match.FeedbackEntry) error
}

// Publisher announces computed outcomes.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RecommendationCache holds full recommendation lists per subject.
type RecommendationCache = cache.LRU[int64, []recommend.Recommendation]

// Engine runs matching operations. It is safe for concurrent use.
type Engine struct {
	cfg      *match.Config
	provider DataProvider
	store    WeightStore
	pub      Publisher
	logger   zerolog.Logger

	scorer      *similarity.Scorer
	builder     *preference.Builder
	options     *options.Ranker
	recommender *recommend.Ranker
	cache       *RecommendationCache
	now         func() time.Time
	rng         *rand.Rand

	batches        atomic.Int64
	recommends     atomic.Int64
	feedback       atomic.Int64
	errors         atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	publishFailure atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeightStore sets the store for tuned weights and feedback history.
func WithWeightStore(store WeightStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithPublisher sets the outcome publisher.
func WithPublisher(pub Publisher) Option {
	return func(e *Engine) { e.pub = pub }
}

// WithRand sets the master generator for option runs.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithCache replaces the recommendation cache. A nil cache disables caching.
func WithCache(c *RecommendationCache) Option {
	return func(e *Engine) {
		e.cache = c
		if c == nil {
			e.cfg.Cache.Enabled = false
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. cfg is validated and copied.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *match.Config, provider DataProvider, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = match.DefaultConfig()
	}
	if provider == nil {
		return nil, errors.New("engine: data provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	e := &Engine{
		cfg:      cfg.Clone(),
		provider: provider,
		logger:   logger.With().Str("component", "match_engine").Logger(),
		now:      time.Now,
	}
	if e.cfg.Cache.Enabled {
		e.cache = cache.NewLRU[int64, []recommend.Recommendation](e.cfg.Cache.MaxEntries, e.cfg.Cache.TTL)
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache != nil {
		e.cache.SetClock(e.now)
	}

	e.scorer = similarity.NewScorer(e.cfg.Scoring)
	e.builder = preference.NewBuilder(e.scorer, e.cfg.Limits.Workers)
	e.options = options.NewRanker(e.cfg.Options, e.cfg.Limits.Workers, e.rng)
	e.recommender = recommend.NewRanker(e.cfg.Recommend)

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *match.Config {
	return e.cfg.Clone()
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Batches         int64        `json:"batches"`
	Recommendations int64        `json:"recommendations"`
	Feedback        int64        `json:"feedback"`
	Errors          int64        `json:"errors"`
	CacheHits       int64        `json:"cache_hits"`
	CacheMisses     int64        `json:"cache_misses"`
	PublishFailures int64        `json:"publish_failures"`
	Cache           *cache.Stats `json:"cache,omitempty"`
}

// Stats returns the current counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Batches:         e.batches.Load(),
		Recommendations: e.recommends.Load(),
		Feedback:        e.feedback.Load(),
		Errors:          e.errors.Load(),
		CacheHits:       e.cacheHits.Load(),
		CacheMisses:     e.cacheMisses.Load(),
		PublishFailures: e.publishFailure.Load(),
	}
	if e.cache != nil {
		cs := e.cache.Stats()
		s.Cache = &cs
	}
	return s
}

// fail counts err and returns it.
func (e *Engine) fail(err error) error {
	e.errors.Add(1)
	return err
}

// withWeights overlays the tuned weights of r when a store is configured.
//
//nolint:gocritic // records are read-only snapshots
func (e *Engine) withWeights(ctx context.Context, r match.Record) (match.Record, error) {
	if e.store == nil {
		return r, nil
	}
	w, err := e.store.LoadWeights(ctx, r.ID())
	metrics.RecordWeightStoreOp("load", ignoreNotFound(err))
	switch {
	case errors.Is(err, match.ErrNotFound):
		return r, nil
	case err != nil:
		return r, fmt.Errorf("load weights for %d: %w", r.ID(), err)
	}
	r.Profile.Weights = w
	return r, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, match.ErrNotFound) {
		return nil
	}
	return err
}

// ctxLogger adds the request's correlation id to the engine logger.
func (e *Engine) ctxLogger(ctx context.Context) zerolog.Logger {
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		return e.logger.With().Str("correlation_id", id).Logger()
	}
	return e.logger
}

// publish sends event if a publisher is configured. Failures are logged.
func (e *Engine) publish(ctx context.Context, event Event) {
	if e.pub == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	if err := e.pub.Publish(ctx, event); err != nil {
		e.publishFailure.Add(1)
		e.logger.Warn().Err(err).
			Str("event_type", event.Type).
			Str("key", event.Key).
			Msg("Failed to publish event")
	}
}
