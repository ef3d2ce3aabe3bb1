// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package preference

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/similarity"
)

// Scorer computes a directional similarity between two records.
type Scorer interface {
	Score(a, b match.Record) (similarity.Result, error)
}

// Builder computes preference matrices over a bounded worker pool.
type Builder struct {
	scorer  Scorer
	workers int
}

// NewBuilder creates a builder. workers below 1 are treated as 1.
func NewBuilder(scorer Scorer, workers int) *Builder {
	if workers < 1 {
		workers = 1
	}
	return &Builder{scorer: scorer, workers: workers}
}

// Build scores every ordered pair of records and ranks each row.
// Rows are computed concurrently; the result does not depend on scheduling.
// The first scoring error cancels the remaining rows and is returned.
func (b *Builder) Build(ctx context.Context, records []match.Record) (*Matrix, error) {
	n := len(records)
	ids := make([]int64, n)
	capacities := make([]int, n)
	for i := range records {
		ids[i] = records[i].ID()
		capacities[i] = records[i].Capacity()
	}

	sims := make([][]float64, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := make([]float64, n)
			for j := range records {
				if i == j {
					continue
				}
				res, err := b.scorer.Score(records[i], records[j])
				if err != nil {
					return fmt.Errorf("preference row %d: %w", records[i].ID(), err)
				}
				row[j] = res.Similarity
			}
			sims[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build preferences: %w", err)
	}

	return NewMatrix(ids, capacities, sims)
}
