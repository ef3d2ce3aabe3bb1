// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/options"
	"github.com/tomtom215/roommatch/internal/metrics"
	"github.com/tomtom215/roommatch/internal/validation"
)

// GroupRequest selects the population and run parameters for group matching.
type GroupRequest struct {
	// Runs is the number of shuffled runs. Zero selects the configured default.
	Runs int `json:"runs,omitempty"`

	// Seed reproduces a previous batch. Zero draws from the engine generator.
	Seed int64 `json:"seed,omitempty"`

	// IDs restricts matching to a subset. Empty matches the full population.
	IDs []int64 `json:"ids,omitempty"`
}

// RankedOption is an option with a stable identifier.
type RankedOption struct {
	ID string `json:"id"`
	options.Option
}

// GroupMetadata describes a matching batch.
type GroupMetadata struct {
	Population  int       `json:"population"`
	Runs        int       `json:"runs"`
	Seed        int64     `json:"seed,omitempty"`
	Options     int       `json:"options"`
	Matched     int       `json:"matched"`
	Unmatched   int       `json:"unmatched"`
	StableRatio float64   `json:"stable_ratio"`
	Truncated   int       `json:"truncated_runs,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GroupResponse is the ranked result of a matching batch.
type GroupResponse struct {
	RequestID string         `json:"request_id"`
	Options   []RankedOption `json:"options"`
	Metadata  GroupMetadata  `json:"metadata"`
}

// Best returns the top-ranked option, or false when none was produced.
func (r *GroupResponse) Best() (RankedOption, bool) {
	if len(r.Options) == 0 {
		return RankedOption{}, false
	}
	return r.Options[0], true
}

// MatchGroups partitions the population into roommate groups over several
// shuffled runs and returns the options ranked by stable-pair count.
func (e *Engine) MatchGroups(ctx context.Context, req GroupRequest) (*GroupResponse, error) {
	start := e.now()
	e.batches.Add(1)

	resp, err := e.matchGroups(ctx, req, start)

	summary := metrics.BatchSummary{}
	if resp != nil {
		md := resp.Metadata
		summary = metrics.BatchSummary{
			Population: md.Population,
			Options:    md.Options,
			Matched:    md.Matched,
			Unmatched:  md.Unmatched,
			Truncated:  md.Truncated,
		}
		if best, ok := resp.Best(); ok {
			summary.Groups = len(best.Groups)
			summary.StablePairs = best.StablePairs
			summary.TotalPairs = best.TotalPairs
		}
	}
	metrics.RecordMatchBatch(e.now().Sub(start), summary, err)

	if err != nil {
		return nil, e.fail(err)
	}
	return resp, nil
}

func (e *Engine) matchGroups(ctx context.Context, req GroupRequest, start time.Time) (*GroupResponse, error) {
	runs, err := e.resolveRuns(req.Runs)
	if err != nil {
		return nil, err
	}

	records, err := e.loadPopulation(ctx, req.IDs)
	if err != nil {
		return nil, err
	}

	log := e.ctxLogger(ctx)
	log.Debug().
		Int("population", len(records)).
		Int("runs", runs).
		Int64("seed", req.Seed).
		Msg("Starting group matching batch")

	m, err := e.builder.Build(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("match groups: %w", err)
	}

	ranker := e.options
	if req.Seed != 0 {
		ranker = options.NewRanker(e.cfg.Options, e.cfg.Limits.Workers,
			rand.New(rand.NewSource(req.Seed))) //nolint:gosec // reproducible shuffling, not security
	}

	ranked, err := ranker.Rank(ctx, m, runs)
	if err != nil {
		return nil, fmt.Errorf("match groups: %w", err)
	}

	resp := &GroupResponse{
		RequestID: requestID(ctx),
		Options: lo.Map(ranked, func(opt options.Option, _ int) RankedOption {
			return RankedOption{ID: uuid.NewString(), Option: opt}
		}),
		Metadata: GroupMetadata{
			Population:  len(records),
			Runs:        runs,
			Seed:        req.Seed,
			Options:     len(ranked),
			GeneratedAt: e.now().UTC(),
		},
	}
	resp.Metadata.Truncated = lo.CountBy(ranked, func(opt options.Option) bool { return opt.Truncated })

	if best, ok := resp.Best(); ok {
		resp.Metadata.Unmatched = len(best.Unmatched)
		resp.Metadata.Matched = len(records) - len(best.Unmatched)
		if best.TotalPairs > 0 {
			resp.Metadata.StableRatio = float64(best.StablePairs) / float64(best.TotalPairs)
		}
	} else {
		resp.Metadata.Unmatched = len(records)
	}
	resp.Metadata.DurationMS = e.now().Sub(start).Milliseconds()

	log.Info().
		Str("request_id", resp.RequestID).
		Int("population", resp.Metadata.Population).
		Int("options", resp.Metadata.Options).
		Int("matched", resp.Metadata.Matched).
		Float64("stable_ratio", resp.Metadata.StableRatio).
		Int64("duration_ms", resp.Metadata.DurationMS).
		Msg("Group matching batch complete")

	e.publish(ctx, Event{
		Type:          EventOptionsComputed,
		Key:           resp.RequestID,
		Payload:       resp,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
	})

	return resp, nil
}

func (e *Engine) resolveRuns(runs int) (int, error) {
	if runs == 0 {
		return e.cfg.Options.Runs, nil
	}
	if runs < 0 || runs > e.cfg.Limits.MaxRuns {
		return 0, fmt.Errorf("runs must be in [1, %d], got %d", e.cfg.Limits.MaxRuns, runs)
	}
	return runs, nil
}

// loadPopulation fetches, overlays and validates the batch records.
func (e *Engine) loadPopulation(ctx context.Context, ids []int64) ([]match.Record, error) {
	if len(ids) > e.cfg.Limits.MaxPopulation {
		return nil, fmt.Errorf("%w: %d ids exceed limit %d", match.ErrPopulationTooLarge, len(ids), e.cfg.Limits.MaxPopulation)
	}
	if dup, ok := firstDuplicate(ids); ok {
		return nil, fmt.Errorf("%w: %d", match.ErrDuplicateParticipant, dup)
	}

	var (
		records []match.Record
		err     error
	)
	if len(ids) == 0 {
		records, err = e.provider.Population(ctx)
	} else {
		records, err = e.provider.Records(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("load population: %w", err)
	}
	if len(records) > e.cfg.Limits.MaxPopulation {
		return nil, fmt.Errorf("%w: %d records exceed limit %d", match.ErrPopulationTooLarge, len(records), e.cfg.Limits.MaxPopulation)
	}

	for i := range records {
		if records[i], err = e.withWeights(ctx, records[i]); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateRecords(records); err != nil {
		return nil, validation.AsMatchError(err)
	}
	return records, nil
}

func firstDuplicate(ids []int64) (int64, bool) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}

// requestID reuses the request's correlation id when present.
func requestID(ctx context.Context) string {
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
