// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package services adapts long-running components to suture.Service.

	MatchService         scheduled and triggered matching batches
	HTTPServerService    the ops listener with graceful shutdown
	EmbeddedNATSService  embedded broker lifecycle

Each service returns ctx.Err() on cancellation and implements fmt.Stringer
so supervisor events name it.

MatchService throttles manual triggers with golang.org/x/time/rate and
coalesces triggers that arrive while a batch is already pending. A failed
batch is logged and recorded in LastResult; the loop keeps running.
*/
package services
