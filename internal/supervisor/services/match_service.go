// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match/engine"
)

// BatchRunner runs one matching batch.
type BatchRunner interface {
	MatchGroups(ctx context.Context, req engine.GroupRequest) (*engine.GroupResponse, error)
}

// MatchServiceConfig holds scheduling for the batch service.
type MatchServiceConfig struct {
	// Interval between scheduled batches. Zero falls back to one hour.
	Interval time.Duration

	// RunOnStartup runs a batch when the service starts.
	RunOnStartup bool

	// Timeout bounds one batch. Zero falls back to five minutes.
	Timeout time.Duration

	// TriggerRate and TriggerBurst throttle Trigger.
	TriggerRate  float64
	TriggerBurst int

	// IDs restricts every batch to a cohort.
	IDs []int64
}

// BatchResult summarizes the most recent batch.
type BatchResult struct {
	RequestID  string        `json:"request_id,omitempty"`
	Options    int           `json:"options"`
	Matched    int           `json:"matched"`
	Unmatched  int           `json:"unmatched"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
	Err        error         `json:"-"`
}

// MatchService runs matching batches on a schedule and on demand.
type MatchService struct {
	runner  BatchRunner
	config  MatchServiceConfig
	limiter *rate.Limiter
	trigger chan struct{}
	logger  zerolog.Logger
	name    string

	mu   sync.RWMutex
	last *BatchResult
	runs int
}

// NewMatchService creates the batch service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatchService(runner BatchRunner, cfg MatchServiceConfig, logger zerolog.Logger) *MatchService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.TriggerBurst < 1 {
		cfg.TriggerBurst = 1
	}

	return &MatchService{
		runner:  runner,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.TriggerRate), cfg.TriggerBurst),
		trigger: make(chan struct{}, 1),
		logger:  logger.With().Str("service", "match").Logger(),
		name:    "match-service",
	}
}

// Trigger requests an immediate batch. It returns false when throttled.
// Requests arriving while one is pending are coalesced into it.
func (s *MatchService) Trigger() bool {
	if !s.limiter.Allow() {
		return false
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return true
}

// Serve implements suture.Service.
func (s *MatchService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Int("cohort", len(s.config.IDs)).
		Msg("match service starting")

	if s.config.RunOnStartup {
		s.run(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("match service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.run(ctx, "schedule")

		case <-s.trigger:
			s.run(ctx, "trigger")
		}
	}
}

// run executes one batch. Batch failures are logged and recorded; they do
// not stop the service.
func (s *MatchService) run(ctx context.Context, reason string) {
	runCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), s.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.runner.MatchGroups(runCtx, engine.GroupRequest{IDs: s.config.IDs})

	result := &BatchResult{Duration: time.Since(start), FinishedAt: time.Now().UTC(), Err: err}
	if resp != nil {
		result.RequestID = resp.RequestID
		result.Options = resp.Metadata.Options
		result.Matched = resp.Metadata.Matched
		result.Unmatched = resp.Metadata.Unmatched
	}

	s.mu.Lock()
	s.last = result
	s.runs++
	s.mu.Unlock()

	log := s.logger.With().
		Str("reason", reason).
		Str("correlation_id", logging.CorrelationIDFromContext(runCtx)).
		Dur("duration", result.Duration).
		Logger()
	if err != nil {
		log.Warn().Err(err).Msg("matching batch failed")
		return
	}
	log.Info().
		Str("request_id", result.RequestID).
		Int("options", result.Options).
		Int("matched", result.Matched).
		Int("unmatched", result.Unmatched).
		Msg("matching batch complete")
}

// LastResult returns the most recent batch result, or false before the
// first batch.
func (s *MatchService) LastResult() (BatchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return BatchResult{}, false
	}
	return *s.last, true
}

// Runs returns the number of batches attempted.
func (s *MatchService) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

// String returns the service name for logging.
func (s *MatchService) String() string {
	return s.name
}
