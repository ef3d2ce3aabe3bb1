// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package preference builds the pairwise preference matrix consumed by the
// group matcher and the option ranker.
//
// Participants live in an index-addressed arena. Every reference between
// participants is an arena index, never a pointer.
package preference

import (
	"fmt"
	"sort"

	"github.com/tomtom215/roommatch/internal/match"
)

// Edge is one entry of a preference list: the similarity of Target as seen by
// the list owner.
type Edge struct {
	Target     int     `json:"target"`
	TargetID   int64   `json:"target_id"`
	Similarity float64 `json:"similarity"`
}

// Participant is the immutable, per-population view of one record.
type Participant struct {
	Index int   `json:"index"`
	ID    int64 `json:"id"`

	// Capacity is the number of additional roommates wanted, at least 1.
	Capacity int `json:"capacity"`

	// Preferences lists every other participant by descending similarity.
	// Equal similarities keep arena order.
	Preferences []Edge `json:"preferences"`
}

// Matrix holds the participants of one population and their directional
// similarities. A Matrix is read-only once built.
type Matrix struct {
	participants []Participant
	sims         [][]float64
	index        map[int64]int
}

// NewMatrix builds a matrix from explicit similarities. sims[i][j] is the
// similarity of participant j as seen by participant i; the diagonal is ignored.
func NewMatrix(ids []int64, capacities []int, sims [][]float64) (*Matrix, error) {
	n := len(ids)
	if len(capacities) != n || len(sims) != n {
		return nil, fmt.Errorf("matrix: %d ids, %d capacities, %d rows", n, len(capacities), len(sims))
	}

	index := make(map[int64]int, n)
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("matrix: id %d: %w", id, match.ErrDuplicateParticipant)
		}
		index[id] = i
	}
	for i, row := range sims {
		if len(row) != n {
			return nil, fmt.Errorf("matrix: row %d has %d columns, want %d", i, len(row), n)
		}
	}

	m := &Matrix{
		participants: make([]Participant, n),
		sims:         sims,
		index:        index,
	}
	for i := range ids {
		capacity := capacities[i]
		if capacity < 1 {
			capacity = 1
		}
		m.participants[i] = Participant{
			Index:       i,
			ID:          ids[i],
			Capacity:    capacity,
			Preferences: rankRow(i, ids, sims[i]),
		}
	}
	return m, nil
}

// rankRow orders every j != i by descending sims[i][j], keeping index order
// for ties.
func rankRow(i int, ids []int64, row []float64) []Edge {
	edges := make([]Edge, 0, len(row)-1)
	for j, sim := range row {
		if j == i {
			continue
		}
		edges = append(edges, Edge{Target: j, TargetID: ids[j], Similarity: sim})
	}
	sort.SliceStable(edges, func(a, b int) bool {
		return edges[a].Similarity > edges[b].Similarity
	})
	return edges
}

// Len returns the number of participants.
func (m *Matrix) Len() int {
	return len(m.participants)
}

// Participant returns the participant at arena index i.
func (m *Matrix) Participant(i int) Participant {
	return m.participants[i]
}

// Participants returns the arena. Callers must not modify it.
func (m *Matrix) Participants() []Participant {
	return m.participants
}

// Similarity returns the similarity of j as seen by i, or 0 for i == j.
func (m *Matrix) Similarity(i, j int) float64 {
	if i == j {
		return 0
	}
	return m.sims[i][j]
}

// IndexOf returns the arena index for id.
func (m *Matrix) IndexOf(id int64) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// IDs returns participant ids in arena order.
func (m *Matrix) IDs() []int64 {
	out := make([]int64, len(m.participants))
	for i, p := range m.participants {
		out[i] = p.ID
	}
	return out
}
