// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package recommend orders one-to-one roommate candidates for a subject.
//
// Candidates are ranked by adjusted similarity (similarity plus a boost per
// received friend request), then raw similarity, then a fixed tie-break
// chain: same gender, smaller age gap, smaller cleanliness distance, smaller
// noise-tolerance distance. Full ties keep input order.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/attributes"
)

// Candidate is a record scored from the subject's perspective.
type Candidate struct {
	Record     match.Record `json:"record"`
	Similarity float64      `json:"similarity"`
}

// Recommendation is one ranked candidate.
type Recommendation struct {
	Rank       int     `json:"rank"`
	ID         int64   `json:"id"`
	Name       string  `json:"name,omitempty"`
	Similarity float64 `json:"similarity"`
	Adjusted   float64 `json:"adjusted"`
}

// Ranker applies the ranking rules. A Ranker is immutable.
type Ranker struct {
	boost    float64
	defaultK int
	maxK     int
}

// NewRanker creates a ranker from cfg.
//
//nolint:gocritic // config passed by value
func NewRanker(cfg match.RecommendConfig) *Ranker {
	return &Ranker{
		boost:    cfg.FriendRequestBoost,
		defaultK: cfg.DefaultK,
		maxK:     cfg.MaxK,
	}
}

// Limit resolves a requested result size against the configured bounds.
func (r *Ranker) Limit(k int) int {
	if k <= 0 {
		k = r.defaultK
	}
	if r.maxK > 0 && k > r.maxK {
		k = r.maxK
	}
	return k
}

// sortKey holds the precomputed comparison fields of one candidate.
type sortKey struct {
	cand       Candidate
	adjusted   float64
	sameGender bool
	ageGap     float64
	cleanGap   float64
	noiseGap   float64
}

// Rank filters out the subject and any candidate with a rejection involving
// the subject, orders the rest, and returns at most Limit(k) results.
//
//nolint:gocritic // subject is a read-only snapshot
func (r *Ranker) Rank(
	subject match.Record,
	candidates []Candidate,
	rejections []match.Rejection,
	k int,
) ([]Recommendation, error) {
	blocked := BlockedIDs(subject.ID(), rejections)

	eligible := lo.Filter(candidates, func(c Candidate, _ int) bool {
		id := c.Record.ID()
		_, rejected := blocked[id]
		return id != subject.ID() && !rejected
	})

	keys := make([]sortKey, len(eligible))
	for i, c := range eligible {
		key, err := r.keyFor(subject, c)
		if err != nil {
			return nil, fmt.Errorf("rank candidate %d: %w", c.Record.ID(), err)
		}
		keys[i] = key
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return less(&keys[i], &keys[j])
	})

	limit := r.Limit(k)
	if len(keys) > limit {
		keys = keys[:limit]
	}

	return lo.Map(keys, func(key sortKey, i int) Recommendation {
		return Recommendation{
			Rank:       i + 1,
			ID:         key.cand.Record.ID(),
			Name:       key.cand.Record.Person.Name,
			Similarity: key.cand.Similarity,
			Adjusted:   key.adjusted,
		}
	}), nil
}

// Adjusted returns similarity boosted by the candidate's friend requests.
func (r *Ranker) Adjusted(similarity float64, friendRequests int) float64 {
	return similarity + float64(friendRequests)*r.boost
}

//nolint:gocritic // subject is a read-only snapshot
func (r *Ranker) keyFor(subject match.Record, c Candidate) (sortKey, error) {
	cleanGap, err := attributes.EnumDistance(subject.Profile.Cleanliness, c.Record.Profile.Cleanliness)
	if err != nil {
		return sortKey{}, err
	}
	noiseGap, err := attributes.EnumDistance(subject.Profile.NoiseTolerance, c.Record.Profile.NoiseTolerance)
	if err != nil {
		return sortKey{}, err
	}

	ageGap := math.Inf(1)
	if !subject.Person.BirthDate.IsZero() && !c.Record.Person.BirthDate.IsZero() {
		ageGap = attributes.AgeDistance(subject.Person.BirthDate, c.Record.Person.BirthDate)
	}

	return sortKey{
		cand:       c,
		adjusted:   r.Adjusted(c.Similarity, c.Record.Person.FriendRequests),
		sameGender: subject.Person.Gender != "" && strings.EqualFold(subject.Person.Gender, c.Record.Person.Gender),
		ageGap:     ageGap,
		cleanGap:   cleanGap,
		noiseGap:   noiseGap,
	}, nil
}

// less reports whether a ranks strictly before b.
func less(a, b *sortKey) bool {
	if a.adjusted != b.adjusted {
		return a.adjusted > b.adjusted
	}
	if a.cand.Similarity != b.cand.Similarity {
		return a.cand.Similarity > b.cand.Similarity
	}
	if a.sameGender != b.sameGender {
		return a.sameGender
	}
	if a.ageGap != b.ageGap {
		return a.ageGap < b.ageGap
	}
	if a.cleanGap != b.cleanGap {
		return a.cleanGap < b.cleanGap
	}
	return a.noiseGap < b.noiseGap
}

// BlockedIDs returns the ids that share a rejection with subject in either
// direction.
func BlockedIDs(subject int64, rejections []match.Rejection) map[int64]struct{} {
	touching := lo.Filter(rejections, func(r match.Rejection, _ int) bool {
		return r.FromID == subject || r.ToID == subject
	})
	return lo.SliceToMap(touching, func(r match.Rejection) (int64, struct{}) {
		if r.FromID == subject {
			return r.ToID, struct{}{}
		}
		return r.FromID, struct{}{}
	})
}
