// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package cli implements the roommatch command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/database"
	"github.com/tomtom215/roommatch/internal/events"
	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match/engine"
	"github.com/tomtom215/roommatch/internal/store"
)

// Version is set at build time.
var Version = "0.1.0"

// app holds the loaded configuration and whatever a command opened.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
	db     *database.DB
	store  *store.WeightStore
	pub    *events.Publisher
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "roommatch",
		Short: "Roommate matching and group assignment engine",
		Long: `Roommatch scores roommate compatibility, partitions a population into
stable roommate groups, and ranks one-to-one recommendations.

Configuration comes from defaults, an optional YAML file (CONFIG_PATH or
config.yaml) and environment variables, in increasing priority.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (overrides CONFIG_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override")

	root.AddCommand(
		newServeCommand(a),
		newMatchCommand(a),
		newRecommendCommand(a),
		newScoreCommand(a),
		newFeedbackCommand(a),
		newHistoryCommand(a),
		newRejectCommand(a),
		newSeedCommand(a),
	)
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) loadConfig() error {
	if a.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, a.configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if !logging.ValidLevel(a.logLevel) {
			return fmt.Errorf("invalid --log-level %q", a.logLevel)
		}
		cfg.Logging.Level = a.logLevel
	}

	logging.Init(cfg.Logging.LoggerConfig())
	a.cfg = cfg
	a.logger = logging.Logger()
	return nil
}

// openData opens DuckDB and the weight store.
func (a *app) openData() error {
	db, err := database.New(&a.cfg.Database, a.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db

	ws, err := store.Open(&a.cfg.Store, a.logger)
	if err != nil {
		return fmt.Errorf("open weight store: %w", err)
	}
	a.store = ws
	return nil
}

// connectEvents connects the publisher to url. An empty url skips
// publishing.
func (a *app) connectEvents(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	pub, err := events.Connect(ctx, &a.cfg.NATS, url, a.logger)
	if err != nil {
		return fmt.Errorf("connect events: %w", err)
	}
	a.pub = pub
	return nil
}

// newEngine builds the engine over the opened data layer.
func (a *app) newEngine() (*engine.Engine, error) {
	opts := []engine.Option{engine.WithWeightStore(a.store)}
	if a.pub != nil {
		opts = append(opts, engine.WithPublisher(a.pub))
	}
	return engine.New(a.cfg.Matching.MatchConfig(), a.db, a.logger, opts...)
}

// openEngine opens the data layer, connects to an external broker when
// configured, and returns an engine. One-shot commands do not start the
// embedded broker.
func (a *app) openEngine(ctx context.Context) (*engine.Engine, error) {
	if err := a.openData(); err != nil {
		return nil, err
	}
	if a.cfg.NATS.Enabled && !a.cfg.NATS.Embedded {
		if err := a.connectEvents(ctx, a.cfg.NATS.URL); err != nil {
			return nil, err
		}
	}
	return a.newEngine()
}

// run wraps a command body so opened resources are closed on every path.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *app) close() {
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close event publisher")
		}
		a.pub = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close weight store")
		}
		a.store = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close database")
		}
		a.db = nil
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
