// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/match/engine"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BatchTrigger requests an out-of-schedule matching batch. Trigger
// returns false when the request was throttled.
type BatchTrigger interface {
	Trigger() bool
}

// StatsProvider exposes engine counters.
type StatsProvider interface {
	Stats() engine.Stats
}

// Dependencies are the collaborators behind the routes. Nil members turn
// their routes into 503 responses.
type Dependencies struct {
	DB      Pinger
	Batches BatchTrigger
	Engine  StatsProvider
}

// Router serves the operations endpoints.
type Router struct {
	cfg    *config.OpsConfig
	deps   Dependencies
	logger zerolog.Logger
}

// NewRouter creates a router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg *config.OpsConfig, deps Dependencies, logger zerolog.Logger) *Router {
	return &Router{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With().Str("component", "ops").Logger(),
	}
}

// Handler builds the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/healthz", rt.healthz)
	r.Get("/readyz", rt.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.RateLimitRequests, rt.cfg.RateLimitWindow))

		r.Get("/stats", rt.stats)
		r.Post("/batches", rt.triggerBatch)
	})

	return r
}

// NewServer returns an http.Server bound to the configured address.
func (rt *Router) NewServer() *http.Server {
	return &http.Server{
		Addr:              rt.cfg.Addr(),
		Handler:           rt.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
