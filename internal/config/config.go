// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package config

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match"
)

// Config holds all application configuration.
type Config struct {
	Matching MatchingConfig `koanf:"matching"`
	Database DatabaseConfig `koanf:"database"`
	Store    StoreConfig    `koanf:"store"`
	NATS     NATSConfig     `koanf:"nats"` // Optional: event publishing over NATS JetStream
	Batch    BatchConfig    `koanf:"batch"`
	Ops      OpsConfig      `koanf:"ops"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// MatchingConfig holds matching engine parameters. It is flattened for
// environment overrides and converted to a match.Config by MatchConfig.
type MatchingConfig struct {
	// Runs is the number of shuffled runs per batch.
	// Default: 50
	Runs int `koanf:"runs"`

	// Seed seeds option ranking. Zero selects match.DefaultSeed.
	// Default: 42
	Seed int64 `koanf:"seed"`

	// Workers bounds parallelism for preference rows and runs.
	// Default: 8
	Workers int `koanf:"workers"`

	// NearTieEpsilon is the similarity band shuffled between runs.
	// Default: 0.01
	NearTieEpsilon float64 `koanf:"near_tie_epsilon"`

	// Deduplicate drops options that repeat a higher-ranked partition.
	// Default: false
	Deduplicate bool `koanf:"dedupe"`

	// MaxPopulation bounds the participants in one batch.
	// Default: 2000
	MaxPopulation int `koanf:"max_population"`

	// MaxRuns bounds the runs a request may ask for.
	// Default: 500
	MaxRuns int `koanf:"max_runs"`

	// DefaultK is the recommendation size when a request omits it.
	// Default: 20
	DefaultK int `koanf:"default_k"`

	// MaxK caps the recommendation size.
	// Default: 100
	MaxK int `koanf:"max_k"`

	// FriendRequestBoost is added per received friend request.
	// Default: 0.05
	FriendRequestBoost float64 `koanf:"friend_request_boost"`

	// Feedback weight adjustment.
	FeedbackThreshold float64 `koanf:"feedback_threshold"`
	FeedbackStep      float64 `koanf:"feedback_step"`
	FeedbackMinWeight float64 `koanf:"feedback_min_weight"`
	FeedbackMaxWeight float64 `koanf:"feedback_max_weight"`

	// SystemWeights are fixed weights for attributes users cannot tune.
	// Only settable from the config file.
	SystemWeights map[string]float64 `koanf:"system_weights"`

	// Recommendation cache.
	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file. ":memory:" opens an ephemeral database.
	// Default: data/roommatch.duckdb
	Path string `koanf:"path"`

	// MaxMemory is passed to DuckDB's memory_limit.
	// Default: 1GB
	MaxMemory string `koanf:"max_memory"`

	// Threads sets DuckDB's worker threads. Zero keeps DuckDB's default.
	// Default: 0
	Threads int `koanf:"threads"`
}

// StoreConfig holds Badger weight store settings.
type StoreConfig struct {
	// Path is the Badger directory.
	// Default: data/weights
	Path string `koanf:"path"`

	// InMemory keeps the store in memory only.
	// Default: false
	InMemory bool `koanf:"in_memory"`
}

// NATSConfig holds event transport settings.
type NATSConfig struct {
	// Enabled controls whether events are published.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// Embedded starts an in-process NATS server with JetStream.
	Embedded bool `koanf:"embedded"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// TopicPrefix is prepended to every event type to form the topic.
	// Default: roommatch
	TopicPrefix string `koanf:"topic_prefix"`

	// MaxReconnects is the client reconnect budget. -1 retries forever.
	// Default: -1
	MaxReconnects int `koanf:"max_reconnects"`

	// ReconnectWait is the delay between reconnect attempts.
	// Default: 2s
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig configures the publisher circuit breaker.
type CircuitBreakerConfig struct {
	// MaxRequests allowed while half-open.
	// Default: 3
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the closed-state window after which counts reset.
	// Default: 1m
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// FailureThreshold is the consecutive failure count that opens the breaker.
	// Default: 5
	FailureThreshold uint32 `koanf:"failure_threshold"`
}

// BatchConfig controls scheduled batch matching.
type BatchConfig struct {
	// Enabled runs the batch service under the supervisor.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// Interval between scheduled batches.
	// Default: 1h
	Interval time.Duration `koanf:"interval"`

	// RunOnStartup runs one batch as soon as the service starts.
	// Default: true
	RunOnStartup bool `koanf:"run_on_startup"`

	// Timeout bounds one batch.
	// Default: 5m
	Timeout time.Duration `koanf:"timeout"`

	// TriggerRate is the sustained rate of manual triggers per second.
	// Default: 0.1
	TriggerRate float64 `koanf:"trigger_rate"`

	// TriggerBurst is the manual trigger burst size.
	// Default: 1
	TriggerBurst int `koanf:"trigger_burst"`

	// IDs restricts scheduled batches to a cohort. Empty means everyone.
	IDs []int64 `koanf:"ids"`
}

// OpsConfig controls the operational HTTP listener.
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`

	// RateLimitRequests per RateLimitWindow per client IP.
	// Default: 60 per 1m
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (o *OpsConfig) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MatchConfig converts the flattened settings to the engine configuration.
func (m *MatchingConfig) MatchConfig() *match.Config {
	cfg := match.DefaultConfig()

	cfg.Options.Runs = m.Runs
	cfg.Options.Seed = m.Seed
	cfg.Options.NearTieEpsilon = m.NearTieEpsilon
	cfg.Options.Deduplicate = m.Deduplicate

	cfg.Limits.Workers = m.Workers
	cfg.Limits.MaxPopulation = m.MaxPopulation
	cfg.Limits.MaxRuns = m.MaxRuns

	cfg.Recommend.DefaultK = m.DefaultK
	cfg.Recommend.MaxK = m.MaxK
	cfg.Recommend.FriendRequestBoost = m.FriendRequestBoost

	cfg.Feedback.Threshold = m.FeedbackThreshold
	cfg.Feedback.Step = m.FeedbackStep
	cfg.Feedback.MinWeight = m.FeedbackMinWeight
	cfg.Feedback.MaxWeight = m.FeedbackMaxWeight

	if len(m.SystemWeights) > 0 {
		weights := make(match.Weights, len(m.SystemWeights))
		for k, v := range m.SystemWeights {
			weights[match.Attribute(k)] = v
		}
		cfg.Scoring.SystemWeights = weights
	}

	cfg.Cache.Enabled = m.CacheEnabled
	cfg.Cache.TTL = m.CacheTTL
	cfg.Cache.MaxEntries = m.CacheMaxEntries

	return cfg
}

// LoggerConfig converts the section to logging.Config writing to stderr.
func (l LoggingConfig) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     l.Level,
		Format:    l.Format,
		Caller:    l.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing precedence, and validates the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
