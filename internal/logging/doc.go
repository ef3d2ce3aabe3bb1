// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package logging configures the process-wide zerolog logger and bridges it to
// the slog and watermill logging interfaces used by third-party libraries.
//
// Initialize once from main:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
// Components derive child loggers:
//
//	log := logging.WithComponent("batch")
//	log.Info().Int("population", n).Msg("Batch started")
//
// Batch runs and HTTP requests carry a correlation id in their context;
// Ctx(ctx) returns a logger that includes it:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Matching")
//
// The level, format and caller flags come from the logging section of the
// application config (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
package logging
