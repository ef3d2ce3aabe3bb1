// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package events publishes engine outcomes to a message broker.

The engine announces three kinds of outcome through its Publisher
collaborator: computed option sets, applied feedback and served
recommendations. This package implements that collaborator on top of
Watermill and delivers the announcements to NATS JetStream.

# Topics

Each event type maps to one topic formed from the configured prefix:

	roommatch.options.computed
	roommatch.feedback.applied
	roommatch.recommendations.served

All topics are captured by a single JetStream stream whose subjects are
"<prefix>.>". EnsureStream creates or updates that stream before the first
publish.

# Messages

The payload is the JSON encoding of engine.Event. Metadata carries the
event type, the event key and the correlation id of the originating
request. The message UUID doubles as the Nats-Msg-Id header so JetStream
drops duplicates within its dedupe window.

# Resilience

Publish runs behind a gobreaker circuit breaker. After the configured
number of consecutive failures the breaker opens and publishes are
rejected without touching the broker until the open timeout elapses.
State transitions are logged and exported as metrics.

# Embedded Server

For single-node deployments EmbeddedServer runs nats-server in process
with JetStream enabled, and the publisher connects to its client URL.

# Usage

	srv, err := events.NewEmbeddedServer(events.ServerOptions{StoreDir: "data/nats"}, logger)
	pub, err := events.Connect(ctx, &cfg.NATS, srv.ClientURL(), logger)
	defer pub.Close()

	eng, err := engine.New(matchCfg, db, logger, engine.WithPublisher(pub))
*/
package events
