// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package grouping

import (
	"github.com/tomtom215/roommatch/internal/match/preference"
)

// Stability summarizes the blocking-pair analysis of a partition.
type Stability struct {
	// StablePairs counts unordered same-group pairs with no blocking partner.
	StablePairs int `json:"stable_pairs"`

	// TotalPairs counts all unordered same-group pairs.
	TotalPairs int `json:"total_pairs"`
}

// Ratio returns StablePairs / TotalPairs, or 0 for a partition with no pairs.
func (s Stability) Ratio() float64 {
	if s.TotalPairs == 0 {
		return 0
	}
	return float64(s.StablePairs) / float64(s.TotalPairs)
}

// StablePairs counts the same-group pairs of groups that are stable for both
// members. A pair (x, y) is unstable when some z outside x's group is
// preferred by x over y and z prefers x over its own situation, which is z's
// average similarity to its group or 0 when unmatched.
//
// The check is O(pairs * N) and intended as a ranking metric.
func StablePairs(m *preference.Matrix, groups []Group) Stability {
	n := m.Len()
	owner := make([]int, n)
	for i := range owner {
		owner[i] = unassigned
	}
	current := make([]float64, n)

	for gi, g := range groups {
		for _, mem := range g.Members {
			owner[mem.Index] = gi
		}
	}
	for _, g := range groups {
		for _, mem := range g.Members {
			current[mem.Index] = avgToGroup(m, mem.Index, g.Members)
		}
	}

	var s Stability
	for _, g := range groups {
		for a := 0; a < len(g.Members); a++ {
			for b := a + 1; b < len(g.Members); b++ {
				s.TotalPairs++
				x, y := g.Members[a].Index, g.Members[b].Index
				if blocked(m, owner, current, x, y) || blocked(m, owner, current, y, x) {
					continue
				}
				s.StablePairs++
			}
		}
	}
	return s
}

// blocked reports whether x has a blocking partner that beats y.
func blocked(m *preference.Matrix, owner []int, current []float64, x, y int) bool {
	xy := m.Similarity(x, y)
	for z := 0; z < m.Len(); z++ {
		if z == x || z == y {
			continue
		}
		if owner[x] != unassigned && owner[z] == owner[x] {
			continue
		}
		if m.Similarity(x, z) > xy && m.Similarity(z, x) > current[z] {
			return true
		}
	}
	return false
}

func avgToGroup(m *preference.Matrix, i int, members []Member) float64 {
	var sum float64
	count := 0
	for _, mem := range members {
		if mem.Index == i {
			continue
		}
		sum += m.Similarity(i, mem.Index)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
