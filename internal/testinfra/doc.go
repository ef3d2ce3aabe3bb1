// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package testinfra starts real dependencies in Docker for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// # NATS Container
//
// NATSContainer runs a JetStream-enabled NATS server and exposes its client
// URL, which the events package connects to exactly as it would to an
// external broker:
//
//	func TestPublish(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, nats)
//	}
//
// Tests skip when no Docker daemon is reachable.
package testinfra
