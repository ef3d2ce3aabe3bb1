// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/roommatch/internal/logging"
)

// Response is the JSON envelope for every ops route except /metrics.
type Response struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	resp.RequestID = logging.CorrelationIDFromContext(r.Context())
	resp.Timestamp = time.Now().UTC()

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, Response{Status: "ok"})
}

func (rt *Router) readyz(w http.ResponseWriter, r *http.Request) {
	if rt.deps.DB == nil {
		respondJSON(w, r, http.StatusServiceUnavailable, Response{Status: "unavailable", Error: "database not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := rt.deps.DB.Ping(ctx); err != nil {
		rt.logger.Warn().Err(err).Msg("Readiness check failed")
		respondJSON(w, r, http.StatusServiceUnavailable, Response{Status: "unavailable", Error: "database unreachable"})
		return
	}
	respondJSON(w, r, http.StatusOK, Response{Status: "ready"})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Engine == nil {
		respondJSON(w, r, http.StatusServiceUnavailable, Response{Status: "unavailable", Error: "engine not configured"})
		return
	}
	respondJSON(w, r, http.StatusOK, Response{Status: "ok", Data: rt.deps.Engine.Stats()})
}

func (rt *Router) triggerBatch(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Batches == nil {
		respondJSON(w, r, http.StatusServiceUnavailable, Response{Status: "unavailable", Error: "batch matching disabled"})
		return
	}
	if !rt.deps.Batches.Trigger() {
		respondJSON(w, r, http.StatusTooManyRequests, Response{Status: "throttled", Error: "a batch was requested too recently"})
		return
	}

	rt.logger.Info().
		Str("correlation_id", logging.CorrelationIDFromContext(r.Context())).
		Msg("Batch requested")
	respondJSON(w, r, http.StatusAccepted, Response{Status: "accepted"})
}
