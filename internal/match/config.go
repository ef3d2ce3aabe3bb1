// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package match

import (
	"fmt"
	"time"
)

// DefaultSeed is used when Options.Seed is zero.
const DefaultSeed int64 = 42

// Config contains all configuration for the matching core.
type Config struct {
	// Scoring contains similarity aggregation parameters.
	Scoring ScoringConfig `json:"scoring"`

	// Feedback contains weight adjustment parameters.
	Feedback FeedbackConfig `json:"feedback"`

	// Options contains multi-run diversification parameters.
	Options OptionsConfig `json:"options"`

	// Recommend contains one-to-one ranking parameters.
	Recommend RecommendConfig `json:"recommend"`

	// Limits contains operational limits enforced by the engine.
	Limits LimitsConfig `json:"limits"`

	// Cache contains recommendation caching parameters.
	Cache CacheConfig `json:"cache"`
}

// ScoringConfig contains similarity aggregation parameters.
type ScoringConfig struct {
	// SystemWeights are fixed weights for attributes users cannot tune.
	// Default: age 0.95, move_in 0.99, university 0.75, office 0.95.
	SystemWeights Weights `json:"system_weights"`
}

// FeedbackConfig contains weight adjustment parameters.
type FeedbackConfig struct {
	// Threshold is the per-attribute similarity above which a weight is nudged.
	// Default: 0.7.
	Threshold float64 `json:"threshold"`

	// Step is the size of one nudge.
	// Default: 0.05.
	Step float64 `json:"step"`

	// MinWeight is the lower clamp for adjusted weights.
	// Default: 0.05.
	MinWeight float64 `json:"min_weight"`

	// MaxWeight is the upper clamp for adjusted weights.
	// Default: 1.0.
	MaxWeight float64 `json:"max_weight"`
}

// OptionsConfig contains multi-run diversification parameters.
type OptionsConfig struct {
	// Runs is the number of shuffled matching runs.
	// Default: 50.
	Runs int `json:"runs"`

	// Seed seeds the master generator. Zero selects DefaultSeed.
	Seed int64 `json:"seed"`

	// NearTieEpsilon is the similarity band within which preferences are
	// treated as interchangeable when shuffling.
	// Default: 0.01.
	NearTieEpsilon float64 `json:"near_tie_epsilon"`

	// Deduplicate drops options whose partition equals a higher-ranked one.
	// Default: false.
	Deduplicate bool `json:"deduplicate"`
}

// RecommendConfig contains one-to-one ranking parameters.
type RecommendConfig struct {
	// FriendRequestBoost is added per received friend request.
	// Default: 0.05.
	FriendRequestBoost float64 `json:"friend_request_boost"`

	// DefaultK is the result size when a request does not specify one.
	// Default: 20.
	DefaultK int `json:"default_k"`

	// MaxK caps the result size.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxPopulation bounds N for group matching.
	// Default: 2000.
	MaxPopulation int `json:"max_population"`

	// MaxRuns bounds K for group matching.
	// Default: 500.
	MaxRuns int `json:"max_runs"`

	// Workers bounds parallelism for preference rows and runs.
	// Default: 8.
	Workers int `json:"workers"`
}

// CacheConfig contains recommendation caching parameters.
type CacheConfig struct {
	// Enabled turns on caching of one-to-one results.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the freshness window for cached results.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries bounds the number of cached subjects.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultSystemWeights returns the fixed weights for system attributes.
func DefaultSystemWeights() Weights {
	return Weights{
		AttrAge:        0.95,
		AttrMoveIn:     0.99,
		AttrUniversity: 0.75,
		AttrOffice:     0.95,
	}
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			SystemWeights: DefaultSystemWeights(),
		},
		Feedback: FeedbackConfig{
			Threshold: 0.7,
			Step:      0.05,
			MinWeight: 0.05,
			MaxWeight: 1.0,
		},
		Options: OptionsConfig{
			Runs:           50,
			Seed:           DefaultSeed,
			NearTieEpsilon: 0.01,
		},
		Recommend: RecommendConfig{
			FriendRequestBoost: 0.05,
			DefaultK:           20,
			MaxK:               100,
		},
		Limits: LimitsConfig{
			MaxPopulation: 2000,
			MaxRuns:       500,
			Workers:       8,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	for attr, w := range c.Scoring.SystemWeights {
		if !IsSystemAttribute(attr) {
			return fmt.Errorf("scoring.system_weights: %w", &InvalidAttributeError{Attribute: attr, Value: "key"})
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("scoring.system_weights.%s must be in [0, 1], got %f", attr, w)
		}
	}

	if c.Feedback.Threshold < 0 || c.Feedback.Threshold > 1 {
		return fmt.Errorf("feedback.threshold must be in [0, 1], got %f", c.Feedback.Threshold)
	}
	if c.Feedback.Step < 0 {
		return fmt.Errorf("feedback.step must be non-negative, got %f", c.Feedback.Step)
	}
	if c.Feedback.MinWeight < 0 || c.Feedback.MinWeight > c.Feedback.MaxWeight {
		return fmt.Errorf("feedback.min_weight must be in [0, max_weight], got %f", c.Feedback.MinWeight)
	}
	if c.Feedback.MaxWeight > 1 {
		return fmt.Errorf("feedback.max_weight must be <= 1, got %f", c.Feedback.MaxWeight)
	}

	if c.Options.Runs < 1 {
		return fmt.Errorf("options.runs must be positive, got %d", c.Options.Runs)
	}
	if c.Options.NearTieEpsilon < 0 {
		return fmt.Errorf("options.near_tie_epsilon must be non-negative, got %f", c.Options.NearTieEpsilon)
	}

	if c.Recommend.FriendRequestBoost < 0 {
		return fmt.Errorf("recommend.friend_request_boost must be non-negative, got %f", c.Recommend.FriendRequestBoost)
	}
	if c.Recommend.DefaultK < 1 {
		return fmt.Errorf("recommend.default_k must be positive, got %d", c.Recommend.DefaultK)
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("recommend.max_k must be >= recommend.default_k, got %d < %d", c.Recommend.MaxK, c.Recommend.DefaultK)
	}

	if c.Limits.MaxPopulation < 2 {
		return fmt.Errorf("limits.max_population must be at least 2, got %d", c.Limits.MaxPopulation)
	}
	if c.Limits.MaxRuns < c.Options.Runs {
		return fmt.Errorf("limits.max_runs must be >= options.runs, got %d < %d", c.Limits.MaxRuns, c.Options.Runs)
	}
	if c.Limits.Workers < 1 {
		return fmt.Errorf("limits.workers must be positive, got %d", c.Limits.Workers)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Seed returns the effective master seed.
func (c *Config) Seed() int64 {
	if c.Options.Seed == 0 {
		return DefaultSeed
	}
	return c.Options.Seed
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Scoring.SystemWeights = c.Scoring.SystemWeights.Clone()
	return &out
}
