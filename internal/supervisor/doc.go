// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package supervisor runs the long-lived parts of the serve command under a
suture v4 supervisor tree.

# Layers

	root ("roommatch")
	├── data-layer
	│   └── EmbeddedNATSService (when nats.embedded)
	├── messaging-layer
	│   └── MatchService (when batch.enabled)
	└── api-layer
	    └── HTTPServerService (when ops.enabled)

Each layer restarts its own services with backoff. A failing batch loop
does not take the ops listener down, so probes and metrics stay available
while matching recovers.

# Events

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog on a slog bridge to the application zerolog logger:

	tree, err := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewMatchService(eng, batchCfg, logger))
	err = tree.Serve(ctx)
*/
package supervisor
