// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type fakeNATSServer struct {
	running   atomic.Bool
	shutdowns atomic.Int32
}

func (f *fakeNATSServer) IsRunning() bool { return f.running.Load() }

func (f *fakeNATSServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.running.Store(false)
	return nil
}

func TestEmbeddedNATSServiceShutsDownOnCancel(t *testing.T) {
	server := &fakeNATSServer{}
	server.running.Store(true)
	svc := NewEmbeddedNATSService(server, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if server.shutdowns.Load() != 1 {
		t.Errorf("Shutdown calls = %d, want 1", server.shutdowns.Load())
	}
}

func TestEmbeddedNATSServiceDetectsStop(t *testing.T) {
	server := &fakeNATSServer{}
	svc := NewEmbeddedNATSService(server, time.Second, zerolog.Nop())
	svc.checkInterval = 10 * time.Millisecond

	err := svc.Serve(context.Background())
	if !errors.Is(err, ErrNATSServerStopped) {
		t.Errorf("Serve() error = %v, want ErrNATSServerStopped", err)
	}
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve() error = %v, want ErrDoNotRestart", err)
	}
	if svc.String() != "embedded-nats" {
		t.Errorf("String() = %q", svc.String())
	}
}
