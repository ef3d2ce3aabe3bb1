// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// ErrNATSServerStopped is returned when the embedded server exits on its own.
var ErrNATSServerStopped = errors.New("embedded NATS server stopped")

// NATSServer is the lifecycle subset of events.EmbeddedServer.
type NATSServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// EmbeddedNATSService owns an embedded NATS server that was started before
// the tree so publishers could connect to it.
//
// Serve watches the server and shuts it down when ctx is cancelled. If the
// server stops by itself the service ends without restart, since the
// process cannot recreate it with the same client URL.
type EmbeddedNATSService struct {
	server          NATSServer
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	name            string
}

// NewEmbeddedNATSService wraps server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmbeddedNATSService(server NATSServer, shutdownTimeout time.Duration, logger zerolog.Logger) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &EmbeddedNATSService{
		server:          server,
		checkInterval:   5 * time.Second,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "nats").Logger(),
		name:            "embedded-nats",
	}
}

// Serve implements suture.Service.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()

			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("embedded NATS shutdown: %w", err)
			}
			s.logger.Info().Msg("embedded NATS server stopped")
			return ctx.Err()

		case <-ticker.C:
			if !s.server.IsRunning() {
				s.logger.Error().Msg("embedded NATS server is no longer running")
				return fmt.Errorf("%w: %w", ErrNATSServerStopped, suture.ErrDoNotRestart)
			}
		}
	}
}

// String implements fmt.Stringer for suture event logs.
func (s *EmbeddedNATSService) String() string {
	return s.name
}
