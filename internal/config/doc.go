// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package config provides layered configuration loading for Roommatch.

Configuration is assembled by Koanf v2 from three sources, lowest to highest
priority:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/roommatch/config.yaml)
 3. Environment variables, through an explicit mapping table

# Sections

  - matching: runs, seed, workers, feedback tuning, limits, cache
  - database: DuckDB path and resource settings
  - store: Badger weight store location
  - nats: event publishing, embedded server, circuit breaker
  - batch: scheduled batch matching and trigger rate
  - ops: operational HTTP listener and rate limit
  - logging: level, format, caller

# Environment Variables

Common overrides:
  - MATCH_RUNS, MATCH_SEED, MATCH_WORKERS: option ranking
  - DUCKDB_PATH: database file (":memory:" for ephemeral)
  - BADGER_PATH, BADGER_IN_MEMORY: weight store
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED: event transport
  - BATCH_ENABLED, BATCH_INTERVAL, BATCH_IDS: scheduled matching
  - HTTP_HOST, HTTP_PORT: ops listener
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER: logging

List-valued variables such as BATCH_IDS are comma-separated.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Matching.MatchConfig()
*/
package config
