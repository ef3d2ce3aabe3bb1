// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

//go:build integration

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/events"
	"github.com/tomtom215/roommatch/internal/match/engine"
)

func TestNATSContainerPublish(t *testing.T) {
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	nats, err := NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("NewNATSContainer() error = %v", err)
	}
	defer CleanupContainer(t, ctx, nats)

	cfg := &config.NATSConfig{
		Enabled:       true,
		URL:           nats.URL,
		TopicPrefix:   "itest",
		MaxReconnects: 3,
		ReconnectWait: 200 * time.Millisecond,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Second,
			FailureThreshold: 3,
		},
	}

	pub, err := events.Connect(ctx, cfg, nats.URL, zerolog.Nop())
	if err != nil {
		t.Fatalf("events.Connect() error = %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(ctx, engine.Event{Type: engine.EventOptionsComputed, Key: "itest-1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	info, err := events.EnsureStream(ctx, nats.URL, cfg.TopicPrefix)
	if err != nil {
		t.Fatalf("EnsureStream() error = %v", err)
	}
	if info.State.Msgs != 1 {
		t.Errorf("stream messages = %d, want 1", info.State.Msgs)
	}
}
