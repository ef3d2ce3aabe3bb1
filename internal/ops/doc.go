// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

/*
Package ops serves the operations HTTP listener.

The listener is for probes, scraping and manual batch control. It is not a
public API.

# Routes

	GET  /healthz       liveness, always 200 while the process serves
	GET  /readyz        readiness, 503 when the database does not answer a ping
	GET  /metrics       Prometheus exposition
	GET  /v1/stats      engine counters as JSON
	POST /v1/batches    request an immediate matching batch (202, or 429 when throttled)

Routes under /v1 are rate limited per client IP with go-chi/httprate.
Every request gets an X-Request-ID header and a correlation id in its
context, and is counted in the HTTP request metrics by route pattern.
*/
package ops
