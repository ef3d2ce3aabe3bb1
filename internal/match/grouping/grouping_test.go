// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package grouping

import (
	"math/rand"
	"testing"

	"github.com/tomtom215/roommatch/internal/match/preference"
)

// uniform returns an n x n similarity matrix filled with v.
func uniform(n int, v float64) [][]float64 {
	sims := make([][]float64, n)
	for i := range sims {
		sims[i] = make([]float64, n)
		for j := range sims[i] {
			if i != j {
				sims[i][j] = v
			}
		}
	}
	return sims
}

func sequentialIDs(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func capacities(n, c int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func mustMatrix(t *testing.T, ids []int64, caps []int, sims [][]float64) *preference.Matrix {
	t.Helper()
	m, err := preference.NewMatrix(ids, caps, sims)
	if err != nil {
		t.Fatalf("NewMatrix() error = %v", err)
	}
	return m
}

func sameMembers(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[int64]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
	}
	return true
}

func TestMatchTwoMutualTop(t *testing.T) {
	t.Parallel()

	m := mustMatrix(t, []int64{10, 20}, []int{1, 1}, [][]float64{{0, 0.8}, {0.9, 0}})
	res := Match(m)

	if len(res.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(res.Groups))
	}
	if !sameMembers(res.Groups[0].MemberIDs(), 10, 20) {
		t.Errorf("group = %v, want [10 20]", res.Groups[0].MemberIDs())
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("unmatched = %v, want none", res.Unmatched)
	}
}

func TestMatchFourUsersTwoPairs(t *testing.T) {
	t.Parallel()

	sims := uniform(4, 0.2)
	sims[0][1], sims[1][0] = 0.9, 0.9
	sims[2][3], sims[3][2] = 0.9, 0.9

	m := mustMatrix(t, sequentialIDs(4), capacities(4, 1), sims)
	res := Match(m)

	if len(res.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(res.Groups))
	}

	seen := make(map[int64]int)
	for _, g := range res.Groups {
		for _, id := range g.MemberIDs() {
			seen[id]++
		}
	}
	for id := int64(1); id <= 4; id++ {
		if seen[id] != 1 {
			t.Errorf("user %d appears in %d groups, want 1", id, seen[id])
		}
	}

	byID := make(map[int64]int)
	for _, v := range res.Views {
		byID[v.ID] = v.Group
	}
	if byID[1] != byID[2] || byID[3] != byID[4] || byID[1] == byID[3] {
		t.Errorf("assignment = %v, want {1,2} and {3,4}", byID)
	}

	st := StablePairs(m, res.Groups)
	if st.StablePairs != 2 || st.TotalPairs != 2 {
		t.Errorf("StablePairs() = %+v, want 2 of 2", st)
	}
}

func TestMatchEvictsWeakestIncumbent(t *testing.T) {
	t.Parallel()

	// A=1, B=2, C=3. C displaces B from {A,B}, then B displaces A from {A,C}.
	sims := [][]float64{
		{0, 0.6, 0.5},
		{0.5, 0, 0.9},
		{0.9, 0.8, 0},
	}
	m := mustMatrix(t, sequentialIDs(3), capacities(3, 1), sims)
	res := Match(m)

	if len(res.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(res.Groups))
	}
	if !sameMembers(res.Groups[0].MemberIDs(), 2, 3) {
		t.Errorf("group = %v, want [3 2]", res.Groups[0].MemberIDs())
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0] != 1 {
		t.Errorf("unmatched = %v, want [1]", res.Unmatched)
	}

	// A still blocks C: C prefers A over B and A is unmatched.
	st := StablePairs(m, res.Groups)
	if st.StablePairs != 0 || st.TotalPairs != 1 {
		t.Errorf("StablePairs() = %+v, want 0 of 1", st)
	}
	if st.Ratio() != 0 {
		t.Errorf("Ratio() = %v, want 0", st.Ratio())
	}
}

func TestMatchGroupOfThree(t *testing.T) {
	t.Parallel()

	m := mustMatrix(t, sequentialIDs(3), capacities(3, 2), uniform(3, 0.8))
	res := Match(m)

	if len(res.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(res.Groups))
	}
	if !sameMembers(res.Groups[0].MemberIDs(), 1, 2, 3) {
		t.Errorf("group = %v, want [1 2 3]", res.Groups[0].MemberIDs())
	}
	for _, mem := range res.Groups[0].Members {
		if mem.AvgSimilarity != 0.8 {
			t.Errorf("member %d avg = %v, want 0.8", mem.ID, mem.AvgSimilarity)
		}
	}
}

func TestMatchEmptyAndSingle(t *testing.T) {
	t.Parallel()

	empty := mustMatrix(t, nil, nil, nil)
	if res := Match(empty); len(res.Groups) != 0 {
		t.Errorf("empty population groups = %d, want 0", len(res.Groups))
	}

	single := mustMatrix(t, []int64{7}, []int{1}, [][]float64{{0}})
	res := Match(single)
	if len(res.Groups) != 0 {
		t.Errorf("single participant groups = %d, want 0", len(res.Groups))
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0] != 7 {
		t.Errorf("unmatched = %v, want [7]", res.Unmatched)
	}
}

func TestMatchQueueOrderChangesOutcome(t *testing.T) {
	t.Parallel()

	m := mustMatrix(t, sequentialIDs(3), capacities(3, 1), uniform(3, 0.5))

	first := Match(m)
	if len(first.Groups) != 1 || !sameMembers(first.Groups[0].MemberIDs(), 1, 2) {
		t.Fatalf("arena order groups = %+v, want {1,2}", first.Groups)
	}

	reordered := Match(m, WithQueueOrder([]int{2, 0, 1}))
	if len(reordered.Groups) != 1 || !sameMembers(reordered.Groups[0].MemberIDs(), 3, 1) {
		t.Errorf("reordered groups = %+v, want {3,1}", reordered.Groups)
	}
}

// An early proposer can hold a mutually-top pair apart: 3 reaches 2 first,
// and 1's average over the whole group {2,3} never beats 2's weakest member.
func TestMatchEarlyProposerSplitsMutualTop(t *testing.T) {
	t.Parallel()

	sims := [][]float64{
		{0, 0.9, 0.1},
		{0.9, 0, 0.85},
		{0.1, 0.95, 0},
	}
	m := mustMatrix(t, sequentialIDs(3), capacities(3, 1), sims)

	arena := Match(m)
	if len(arena.Groups) != 1 || !sameMembers(arena.Groups[0].MemberIDs(), 1, 2) {
		t.Fatalf("arena order groups = %+v, want {1,2}", arena.Groups)
	}

	res := Match(m, WithQueueOrder([]int{2, 0, 1}))
	if len(res.Groups) != 1 || !sameMembers(res.Groups[0].MemberIDs(), 2, 3) {
		t.Errorf("groups = %+v, want {2,3}", res.Groups)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0] != 1 {
		t.Errorf("unmatched = %v, want [1]", res.Unmatched)
	}
}

func TestMatchWithPreferences(t *testing.T) {
	t.Parallel()

	m := mustMatrix(t, sequentialIDs(3), capacities(3, 1), uniform(3, 0.5))

	prefs := make([][]preference.Edge, 3)
	prefs[0] = []preference.Edge{
		{Target: 2, TargetID: 3, Similarity: 0.5},
		{Target: 1, TargetID: 2, Similarity: 0.5},
	}

	res := Match(m, WithPreferences(prefs))
	if len(res.Groups) != 1 || !sameMembers(res.Groups[0].MemberIDs(), 1, 3) {
		t.Errorf("groups = %+v, want {1,3}", res.Groups)
	}
	if got := res.Views[0].Preferences; got[0] != 3 {
		t.Errorf("view preferences = %v, want 3 first", got)
	}
	if got := res.Views[0].Proposed; len(got) != 1 || got[0] != 3 {
		t.Errorf("view proposed = %v, want [3]", got)
	}
}

func TestMatchInvariantsRandomPopulations(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec // test determinism

	for trial := 0; trial < 25; trial++ {
		n := 2 + rng.Intn(30)
		sims := make([][]float64, n)
		caps := make([]int, n)
		for i := range sims {
			caps[i] = 1 + rng.Intn(3)
			sims[i] = make([]float64, n)
			for j := range sims[i] {
				if i != j {
					sims[i][j] = 0.05 + 0.95*rng.Float64()
				}
			}
		}

		m := mustMatrix(t, sequentialIDs(n), caps, sims)
		res := Match(m)

		if res.Truncated {
			t.Errorf("trial %d: run truncated after %d steps", trial, res.Steps)
		}

		seen := make(map[int64]bool)
		for _, g := range res.Groups {
			if len(g.Members) < 2 {
				t.Errorf("trial %d: group %d has %d members", trial, g.ID, len(g.Members))
			}
			maxCap := 0
			for _, mem := range g.Members {
				if seen[mem.ID] {
					t.Errorf("trial %d: participant %d in more than one group", trial, mem.ID)
				}
				seen[mem.ID] = true
				if caps[mem.Index] > maxCap {
					maxCap = caps[mem.Index]
				}
			}
			if len(g.Members) > maxCap+1 {
				t.Errorf("trial %d: group %d size %d exceeds %d", trial, g.ID, len(g.Members), maxCap+1)
			}
		}

		if len(seen)+len(res.Unmatched) != n {
			t.Errorf("trial %d: %d grouped + %d unmatched != %d", trial, len(seen), len(res.Unmatched), n)
		}

		st := StablePairs(m, res.Groups)
		if st.StablePairs > st.TotalPairs {
			t.Errorf("trial %d: stable %d > total %d", trial, st.StablePairs, st.TotalPairs)
		}
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11)) //nolint:gosec // test determinism
	n := 12
	sims := make([][]float64, n)
	for i := range sims {
		sims[i] = make([]float64, n)
		for j := range sims[i] {
			if i != j {
				sims[i][j] = rng.Float64()
			}
		}
	}
	m := mustMatrix(t, sequentialIDs(n), capacities(n, 2), sims)

	a := Match(m)
	b := Match(m)
	if len(a.Groups) != len(b.Groups) {
		t.Fatalf("runs differ: %d vs %d groups", len(a.Groups), len(b.Groups))
	}
	for i := range a.Groups {
		ga, gb := a.Groups[i].MemberIDs(), b.Groups[i].MemberIDs()
		if len(ga) != len(gb) {
			t.Fatalf("group %d differs: %v vs %v", i, ga, gb)
		}
		for k := range ga {
			if ga[k] != gb[k] {
				t.Errorf("group %d differs: %v vs %v", i, ga, gb)
				break
			}
		}
	}
}

func TestStablePairsUnmatchedBlocker(t *testing.T) {
	t.Parallel()

	// 1 and 2 are grouped; 3 is unmatched and prefers 1 over nothing, and 1
	// prefers 3 over 2.
	sims := [][]float64{
		{0, 0.4, 0.7},
		{0.9, 0, 0.1},
		{0.6, 0.1, 0},
	}
	m := mustMatrix(t, sequentialIDs(3), capacities(3, 1), sims)
	groups := []Group{{ID: 0, Members: []Member{{Index: 0, ID: 1}, {Index: 1, ID: 2}}}}

	st := StablePairs(m, groups)
	if st.StablePairs != 0 {
		t.Errorf("StablePairs() = %d, want 0", st.StablePairs)
	}

	// 1 no longer prefers 3 over 2.
	sims[0][2] = 0.3
	m = mustMatrix(t, sequentialIDs(3), capacities(3, 1), sims)
	if st := StablePairs(m, groups); st.StablePairs != 1 {
		t.Errorf("StablePairs() = %d, want 1", st.StablePairs)
	}
}
