// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package options produces several competing group partitions by running the
// group matcher over independently shuffled exploration orders, then ranks the
// partitions by stable-pair count.
//
// Randomness comes from an injected *rand.Rand. Per-run seeds are drawn from it
// before any run starts, so results are identical regardless of how many runs
// execute concurrently.
package options

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/grouping"
	"github.com/tomtom215/roommatch/internal/match/preference"
)

// Option is one ranked partition.
type Option struct {
	// Rank is the 1-based position after sorting.
	Rank int `json:"rank"`

	// Run is the index of the run that produced this option.
	Run int `json:"run"`

	// Seed is the per-run seed, sufficient to reproduce the run.
	Seed int64 `json:"seed"`

	Groups      []grouping.Group `json:"groups"`
	StablePairs int              `json:"stable_pairs"`
	TotalPairs  int              `json:"total_pairs"`
	Unmatched   []int64          `json:"unmatched"`
	Views       []grouping.View  `json:"views,omitempty"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// Ranker runs and ranks shuffled matching runs. It is safe for concurrent use.
type Ranker struct {
	cfg     match.OptionsConfig
	workers int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRanker creates a ranker. A nil rng is seeded from cfg.Seed, or
// match.DefaultSeed when that is zero.
//
//nolint:gocritic // config passed by value
func NewRanker(cfg match.OptionsConfig, workers int, rng *rand.Rand) *Ranker {
	if workers < 1 {
		workers = 1
	}
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = match.DefaultSeed
		}
		rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic shuffling, not security
	}
	return &Ranker{cfg: cfg, workers: workers, rng: rng}
}

// Rank executes runs shuffled matching runs over m and returns the options
// with at least one group, sorted by non-increasing stable-pair count. Ties
// keep run order. runs <= 0 selects the configured default.
func (r *Ranker) Rank(ctx context.Context, m *preference.Matrix, runs int) ([]Option, error) {
	if runs <= 0 {
		runs = r.cfg.Runs
	}

	seeds := r.drawSeeds(runs)
	results := make([]Option, runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for k := 0; k < runs; k++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[k] = r.runOnce(m, k, seeds[k])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank options: %w", err)
	}

	return r.finalize(results), nil
}

func (r *Ranker) drawSeeds(runs int) []int64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	seeds := make([]int64, runs)
	for i := range seeds {
		seeds[i] = r.rng.Int63()
	}
	return seeds
}

func (r *Ranker) runOnce(m *preference.Matrix, run int, seed int64) Option {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic shuffling, not security

	order := rng.Perm(m.Len())
	prefs := make([][]preference.Edge, m.Len())
	for i, p := range m.Participants() {
		prefs[i] = ShuffleNearTies(p.Preferences, r.cfg.NearTieEpsilon, rng)
	}

	res := grouping.Match(m, grouping.WithQueueOrder(order), grouping.WithPreferences(prefs))
	st := grouping.StablePairs(m, res.Groups)

	return Option{
		Run:         run,
		Seed:        seed,
		Groups:      res.Groups,
		StablePairs: st.StablePairs,
		TotalPairs:  st.TotalPairs,
		Unmatched:   res.Unmatched,
		Views:       res.Views,
		Truncated:   res.Truncated,
	}
}

func (r *Ranker) finalize(results []Option) []Option {
	out := make([]Option, 0, len(results))
	for _, opt := range results {
		if len(opt.Groups) == 0 {
			continue
		}
		out = append(out, opt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StablePairs > out[j].StablePairs
	})

	if r.cfg.Deduplicate {
		out = dedupe(out)
	}

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ShuffleNearTies returns a copy of edges in which each run of similarities
// within epsilon of the run's first entry is shuffled in place. Entries never
// move across bands and similarity values are unchanged.
func ShuffleNearTies(edges []preference.Edge, epsilon float64, rng *rand.Rand) []preference.Edge {
	out := make([]preference.Edge, len(edges))
	copy(out, edges)

	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && out[start].Similarity-out[end].Similarity <= epsilon {
			end++
		}
		if end-start > 1 {
			band := out[start:end]
			rng.Shuffle(len(band), func(i, j int) { band[i], band[j] = band[j], band[i] })
		}
		start = end
	}
	return out
}

// PartitionKey returns a canonical string for the set of groups, independent
// of group and member order.
func PartitionKey(groups []grouping.Group) string {
	keys := make([]string, len(groups))
	for i := range groups {
		ids := groups[i].MemberIDs()
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		parts := make([]string, len(ids))
		for k, id := range ids {
			parts[k] = strconv.FormatInt(id, 10)
		}
		keys[i] = strings.Join(parts, ",")
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

func dedupe(options []Option) []Option {
	seen := make(map[string]struct{}, len(options))
	out := options[:0]
	for _, opt := range options {
		key := PartitionKey(opt.Groups)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, opt)
	}
	return out
}
