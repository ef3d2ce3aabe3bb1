// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/events"
	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/ops"
	"github.com/tomtom215/roommatch/internal/supervisor"
	"github.com/tomtom215/roommatch/internal/supervisor/services"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled matching and the ops listener under supervision",
		Long: `Serve runs until SIGINT or SIGTERM. Depending on configuration it starts:
  - an embedded NATS JetStream server (nats.embedded)
  - the matching batch loop (batch.enabled)
  - the ops HTTP listener with /healthz, /readyz, /metrics (ops.enabled)`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := a.serve(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}),
	}
}

//nolint:gocyclo // sequential wiring of optional components
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	a.logger.Info().
		Str("version", Version).
		Str("db_path", cfg.Database.Path).
		Bool("nats", cfg.NATS.Enabled).
		Bool("batch", cfg.Batch.Enabled).
		Bool("ops", cfg.Ops.Enabled).
		Msg("Starting roommatch")

	if err := a.openData(); err != nil {
		return err
	}

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Ops.ShutdownTimeout,
	})

	if cfg.NATS.Enabled {
		brokerURL := cfg.NATS.URL
		if cfg.NATS.Embedded {
			opts, err := embeddedServerOptions(&cfg.NATS)
			if err != nil {
				return err
			}
			srv, err := events.NewEmbeddedServer(opts, a.logger)
			if err != nil {
				return fmt.Errorf("start embedded NATS: %w", err)
			}
			brokerURL = srv.ClientURL()
			tree.AddDataService(services.NewEmbeddedNATSService(srv, cfg.Ops.ShutdownTimeout, a.logger))
			a.logger.Info().Str("url", brokerURL).Msg("Embedded NATS server started")
		}
		if err := a.connectEvents(ctx, brokerURL); err != nil {
			return err
		}
	}

	eng, err := a.newEngine()
	if err != nil {
		return err
	}

	deps := ops.Dependencies{DB: a.db, Engine: eng}
	if cfg.Batch.Enabled {
		svc := services.NewMatchService(eng, services.MatchServiceConfig{
			Interval:     cfg.Batch.Interval,
			RunOnStartup: cfg.Batch.RunOnStartup,
			Timeout:      cfg.Batch.Timeout,
			TriggerRate:  cfg.Batch.TriggerRate,
			TriggerBurst: cfg.Batch.TriggerBurst,
			IDs:          cfg.Batch.IDs,
		}, a.logger)
		tree.AddMessagingService(svc)
		deps.Batches = svc
	}

	if cfg.Ops.Enabled {
		router := ops.NewRouter(&cfg.Ops, deps, a.logger)
		tree.AddAPIService(services.NewHTTPServerService(router.NewServer(), cfg.Ops.ShutdownTimeout))
		a.logger.Info().Str("addr", cfg.Ops.Addr()).Msg("Ops listener configured")
	}

	a.watchLogLevel()

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		a.logger.Warn().Int("services", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	a.logger.Info().Msg("Roommatch stopped")
	return err
}

// watchLogLevel reapplies logging settings when the config file changes.
// Other settings need a restart.
func (a *app) watchLogLevel() {
	path := config.ConfigFile()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			a.logger.Warn().Err(err).Msg("Ignoring invalid configuration change")
			return
		}
		logging.Init(cfg.Logging.LoggerConfig())
		logging.Info().Str("level", cfg.Logging.Level).Msg("Logging configuration reloaded")
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}

// embeddedServerOptions takes the listen address from the configured URL.
func embeddedServerOptions(cfg *config.NATSConfig) (events.ServerOptions, error) {
	opts := events.ServerOptions{StoreDir: cfg.StoreDir}
	if cfg.URL == "" {
		return opts, nil
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return opts, fmt.Errorf("parse nats url: %w", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		opts.Host = u.Host
		return opts, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return opts, fmt.Errorf("parse nats port %q: %w", portStr, err)
	}
	opts.Host = host
	opts.Port = port
	return opts, nil
}
