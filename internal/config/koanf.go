// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/roommatch/internal/match"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/roommatch/config.yaml",
	"/etc/roommatch/config.yml",
}

// ConfigPathEnvVar names the variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config populated with built-in defaults.
func defaultConfig() *Config {
	mc := match.DefaultConfig()

	systemWeights := make(map[string]float64, len(mc.Scoring.SystemWeights))
	for k, v := range mc.Scoring.SystemWeights {
		systemWeights[string(k)] = v
	}

	return &Config{
		Matching: MatchingConfig{
			Runs:               mc.Options.Runs,
			Seed:               mc.Options.Seed,
			Workers:            mc.Limits.Workers,
			NearTieEpsilon:     mc.Options.NearTieEpsilon,
			Deduplicate:        mc.Options.Deduplicate,
			MaxPopulation:      mc.Limits.MaxPopulation,
			MaxRuns:            mc.Limits.MaxRuns,
			DefaultK:           mc.Recommend.DefaultK,
			MaxK:               mc.Recommend.MaxK,
			FriendRequestBoost: mc.Recommend.FriendRequestBoost,
			FeedbackThreshold:  mc.Feedback.Threshold,
			FeedbackStep:       mc.Feedback.Step,
			FeedbackMinWeight:  mc.Feedback.MinWeight,
			FeedbackMaxWeight:  mc.Feedback.MaxWeight,
			SystemWeights:      systemWeights,
			CacheEnabled:       mc.Cache.Enabled,
			CacheTTL:           mc.Cache.TTL,
			CacheMaxEntries:    mc.Cache.MaxEntries,
		},
		Database: DatabaseConfig{
			Path:      "data/roommatch.duckdb",
			MaxMemory: "1GB",
		},
		Store: StoreConfig{
			Path: "data/weights",
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Embedded:      true,
			StoreDir:      "data/nats",
			TopicPrefix:   "roommatch",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				MaxRequests:      3,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Batch: BatchConfig{
			Enabled:      true,
			Interval:     time.Hour,
			RunOnStartup: true,
			Timeout:      5 * time.Minute,
			TriggerRate:  0.1,
			TriggerBurst: 1,
		},
		Ops: OpsConfig{
			Enabled:           true,
			Host:              "0.0.0.0",
			Port:              8080,
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
			ShutdownTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults from defaultConfig
//  2. Config file (optional)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k, err := newKoanf(findConfigFile())
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// GetKoanfInstance returns the layered Koanf instance for inspection, for
// example to print the effective settings.
func GetKoanfInstance() (*koanf.Koanf, error) {
	return newKoanf(findConfigFile())
}

func newKoanf(configPath string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MATCH_RUNS -> matching.runs, DUCKDB_PATH -> database.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	return k, nil
}

// ConfigFile returns the config file Load would read, or "" when none exists.
func ConfigFile() string {
	return findConfigFile()
}

// findConfigFile returns CONFIG_PATH when it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings.
var sliceConfigPaths = []string{
	"batch.ids",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Values from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Matching
	"match_runs":              "matching.runs",
	"match_seed":              "matching.seed",
	"match_workers":           "matching.workers",
	"match_near_tie_epsilon":  "matching.near_tie_epsilon",
	"match_dedupe":            "matching.dedupe",
	"match_max_population":    "matching.max_population",
	"match_max_runs":          "matching.max_runs",
	"recommend_default_k":     "matching.default_k",
	"recommend_max_k":         "matching.max_k",
	"recommend_friend_boost":  "matching.friend_request_boost",
	"recommend_cache_enabled": "matching.cache_enabled",
	"recommend_cache_ttl":     "matching.cache_ttl",
	"recommend_cache_entries": "matching.cache_max_entries",
	"feedback_threshold":      "matching.feedback_threshold",
	"feedback_step":           "matching.feedback_step",
	"feedback_min_weight":     "matching.feedback_min_weight",
	"feedback_max_weight":     "matching.feedback_max_weight",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Weight store
	"badger_path":      "store.path",
	"badger_in_memory": "store.in_memory",

	// NATS
	"nats_enabled":                   "nats.enabled",
	"nats_url":                       "nats.url",
	"nats_embedded":                  "nats.embedded",
	"nats_store_dir":                 "nats.store_dir",
	"nats_topic_prefix":              "nats.topic_prefix",
	"nats_max_reconnects":            "nats.max_reconnects",
	"nats_reconnect_wait":            "nats.reconnect_wait",
	"nats_breaker_max_requests":      "nats.circuit_breaker.max_requests",
	"nats_breaker_interval":          "nats.circuit_breaker.interval",
	"nats_breaker_timeout":           "nats.circuit_breaker.timeout",
	"nats_breaker_failure_threshold": "nats.circuit_breaker.failure_threshold",

	// Batch
	"batch_enabled":        "batch.enabled",
	"batch_interval":       "batch.interval",
	"batch_run_on_startup": "batch.run_on_startup",
	"batch_timeout":        "batch.timeout",
	"batch_trigger_rate":   "batch.trigger_rate",
	"batch_trigger_burst":  "batch.trigger_burst",
	"batch_ids":            "batch.ids",

	// Ops HTTP
	"ops_enabled":           "ops.enabled",
	"http_host":             "ops.host",
	"http_port":             "ops.port",
	"rate_limit_requests":   "ops.rate_limit_requests",
	"rate_limit_window":     "ops.rate_limit_window",
	"http_shutdown_timeout": "ops.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile calls callback whenever the file at path changes. The
// callback should reload with Load and swap the configuration itself.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
