// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package main is the entry point for the roommatch command.

Roommatch scores roommate compatibility, partitions a population into stable
roommate groups over many shuffled runs, and ranks one-to-one roommate
recommendations that adapt to match feedback.

# Application Architecture

The serve command runs a Suture v4 supervisor tree:

	RootSupervisor ("roommatch")
	├── DataSupervisor ("data-layer")
	│   └── Embedded NATS JetStream (nats.embedded)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Match service (scheduled and triggered batches)
	└── APISupervisor ("api-layer")
	    └── Ops HTTP server (/healthz, /readyz, /metrics, /v1)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment variables
 2. Logging: zerolog with JSON or console output
 3. Database: DuckDB population, profiles, weights and rejections
 4. Weight store: Badger adjusted weights and feedback history
 5. Events: Watermill publisher over NATS JetStream with a circuit breaker
 6. Engine: matching, recommendation and feedback operations
 7. Supervisor tree and ops HTTP server

The remaining commands (match, recommend, score, feedback, history, reject,
seed) run one operation against the same storage and exit.

# Usage

	roommatch seed --count 50
	roommatch match --runs 100 --seed 7 --top 3
	roommatch recommend 1 --limit 5
	roommatch feedback 1 4 accepted
	roommatch serve
*/
package main
