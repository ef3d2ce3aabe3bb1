// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/roommatch/internal/logging"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateBatch(); err != nil {
		return err
	}

	if err := c.validateOps(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateMatching delegates to the engine configuration rules.
func (c *Config) validateMatching() error {
	if err := c.Matching.MatchConfig().Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	return nil
}

// validateNATS validates event transport settings (only if enabled).
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if c.NATS.Embedded {
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
	} else {
		if c.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
		}
		if err := validateNATSURL(c.NATS.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}

	if c.NATS.TopicPrefix == "" {
		return fmt.Errorf("NATS_TOPIC_PREFIX must not be empty")
	}
	if strings.ContainsAny(c.NATS.TopicPrefix, " *>") {
		return fmt.Errorf("NATS_TOPIC_PREFIX must not contain spaces or wildcards, got %q", c.NATS.TopicPrefix)
	}

	cb := c.NATS.CircuitBreaker
	if cb.FailureThreshold < 1 {
		return fmt.Errorf("nats.circuit_breaker.failure_threshold must be at least 1")
	}
	if cb.Timeout <= 0 {
		return fmt.Errorf("nats.circuit_breaker.timeout must be positive, got %v", cb.Timeout)
	}
	return nil
}

// validateNATSURL accepts nats, tls, ws and wss URLs with a host.
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}

	return nil
}

func (c *Config) validateBatch() error {
	if !c.Batch.Enabled {
		return nil
	}
	if c.Batch.Interval <= 0 {
		return fmt.Errorf("BATCH_INTERVAL must be positive, got %v", c.Batch.Interval)
	}
	if c.Batch.Timeout <= 0 {
		return fmt.Errorf("BATCH_TIMEOUT must be positive, got %v", c.Batch.Timeout)
	}
	if c.Batch.TriggerRate <= 0 {
		return fmt.Errorf("BATCH_TRIGGER_RATE must be positive, got %f", c.Batch.TriggerRate)
	}
	if c.Batch.TriggerBurst < 1 {
		return fmt.Errorf("BATCH_TRIGGER_BURST must be at least 1, got %d", c.Batch.TriggerBurst)
	}
	for _, id := range c.Batch.IDs {
		if id <= 0 {
			return fmt.Errorf("BATCH_IDS must contain positive ids, got %d", id)
		}
	}
	return nil
}

func (c *Config) validateOps() error {
	if !c.Ops.Enabled {
		return nil
	}
	if c.Ops.Port < 1 || c.Ops.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Ops.Port)
	}
	if c.Ops.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Ops.RateLimitRequests)
	}
	if c.Ops.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Ops.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
