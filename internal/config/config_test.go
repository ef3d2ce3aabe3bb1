// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/roommatch/internal/match"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero runs", func(c *Config) { c.Matching.Runs = 0 }, "matching"},
		{"unknown system weight", func(c *Config) { c.Matching.SystemWeights = map[string]float64{"pets": 0.5} }, "matching"},
		{"empty database path", func(c *Config) { c.Database.Path = " " }, "DUCKDB_PATH"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, "BADGER_PATH"},
		{"in-memory store without path", func(c *Config) { c.Store.Path = ""; c.Store.InMemory = true }, ""},
		{"nats disabled ignores url", func(c *Config) { c.NATS.URL = "http://nope" }, ""},
		{"external nats bad scheme", func(c *Config) {
			c.NATS.Enabled, c.NATS.Embedded, c.NATS.URL = true, false, "http://broker:4222"
		}, "NATS_URL"},
		{"external nats missing url", func(c *Config) {
			c.NATS.Enabled, c.NATS.Embedded, c.NATS.URL = true, false, ""
		}, "NATS_URL"},
		{"embedded nats missing store", func(c *Config) {
			c.NATS.Enabled, c.NATS.StoreDir = true, ""
		}, "NATS_STORE_DIR"},
		{"wildcard topic prefix", func(c *Config) {
			c.NATS.Enabled, c.NATS.TopicPrefix = true, "room.*"
		}, "NATS_TOPIC_PREFIX"},
		{"zero breaker threshold", func(c *Config) {
			c.NATS.Enabled, c.NATS.CircuitBreaker.FailureThreshold = true, 0
		}, "failure_threshold"},
		{"zero batch interval", func(c *Config) { c.Batch.Interval = 0 }, "BATCH_INTERVAL"},
		{"disabled batch ignores interval", func(c *Config) { c.Batch.Enabled, c.Batch.Interval = false, 0 }, ""},
		{"zero trigger burst", func(c *Config) { c.Batch.TriggerBurst = 0 }, "BATCH_TRIGGER_BURST"},
		{"negative batch id", func(c *Config) { c.Batch.IDs = []int64{1, -2} }, "BATCH_IDS"},
		{"bad port", func(c *Config) { c.Ops.Port = 70000 }, "HTTP_PORT"},
		{"zero rate window", func(c *Config) { c.Ops.RateLimitWindow = 0 }, "RATE_LIMIT_WINDOW"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNATSURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"nats://localhost:4222", false},
		{"tls://nats.example.com:4222", false},
		{"ws://127.0.0.1:8080", false},
		{"wss://nats.example.com", false},
		{"http://localhost:4222", true},
		{"nats://", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		err := validateNATSURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateNATSURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestMatchConfig(t *testing.T) {
	m := defaultConfig().Matching
	m.Runs = 9
	m.Seed = 1234
	m.Workers = 3
	m.Deduplicate = true
	m.MaxK = 40
	m.FeedbackStep = 0.1
	m.SystemWeights = map[string]float64{"age": 0.4}
	m.CacheEnabled = false
	m.CacheTTL = time.Second

	cfg := m.MatchConfig()

	if cfg.Options.Runs != 9 || cfg.Options.Seed != 1234 || !cfg.Options.Deduplicate {
		t.Errorf("Options = %+v, want runs 9 seed 1234 dedupe", cfg.Options)
	}
	if cfg.Limits.Workers != 3 {
		t.Errorf("Limits.Workers = %d, want 3", cfg.Limits.Workers)
	}
	if cfg.Recommend.MaxK != 40 {
		t.Errorf("Recommend.MaxK = %d, want 40", cfg.Recommend.MaxK)
	}
	if cfg.Feedback.Step != 0.1 {
		t.Errorf("Feedback.Step = %v, want 0.1", cfg.Feedback.Step)
	}
	if len(cfg.Scoring.SystemWeights) != 1 || cfg.Scoring.SystemWeights[match.AttrAge] != 0.4 {
		t.Errorf("SystemWeights = %v, want {age: 0.4}", cfg.Scoring.SystemWeights)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL != time.Second {
		t.Errorf("Cache = %+v, want disabled with 1s ttl", cfg.Cache)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("MatchConfig().Validate() error = %v", err)
	}
}

func TestMatchConfigEmptySystemWeightsKeepsDefaults(t *testing.T) {
	m := defaultConfig().Matching
	m.SystemWeights = nil

	cfg := m.MatchConfig()
	if len(cfg.Scoring.SystemWeights) != len(match.DefaultSystemWeights()) {
		t.Errorf("SystemWeights = %v, want defaults", cfg.Scoring.SystemWeights)
	}
}

func TestLoggerConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "console", Caller: true}.LoggerConfig()
	if lc.Level != "warn" || lc.Format != "console" || !lc.Caller || !lc.Timestamp || lc.Output == nil {
		t.Errorf("LoggerConfig() = %+v", lc)
	}
}

func TestOpsAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9090, ":9090"},
		{"::1", 8080, "[::1]:8080"},
	}
	for _, tt := range tests {
		o := OpsConfig{Host: tt.host, Port: tt.port}
		if got := o.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
