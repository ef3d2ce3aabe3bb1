// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package grouping implements capacity-aware deferred acceptance over a
// preference matrix and the post-hoc stability metric used to rank runs.
//
// A run is sequential: each admission depends on the evolving group state.
// All run state is private to one call of Match, so independent runs may
// execute concurrently over the same read-only matrix.
//
// # Algorithm
//
// Free participants propose to their preferences in order. An unattached
// target either forms a pair with an unattached proposer or joins the
// proposer's group. A target already in a group G admits the proposer when G
// has room (max member capacity + 1). When G is full, the proposer displaces
// the weakest incumbent only if its average similarity to G beats that
// incumbent's own average. Displaced members return to the free queue.
//
// The admission rule approximates stability; it does not guarantee it.
// StablePairs measures the result after the fact.
package grouping

import (
	"github.com/tomtom215/roommatch/internal/match/preference"
)

const unassigned = -1

// Member is one group member with its average similarity to the others.
type Member struct {
	Index         int     `json:"index"`
	ID            int64   `json:"id"`
	AvgSimilarity float64 `json:"avg_similarity"`
}

// Group is a set of at least two members in admission order.
type Group struct {
	ID      int      `json:"id"`
	Members []Member `json:"members"`
}

// MemberIDs returns the member ids in admission order.
func (g *Group) MemberIDs() []int64 {
	out := make([]int64, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.ID
	}
	return out
}

// View is the per-run projection of one participant after the run.
type View struct {
	ID       int64 `json:"id"`
	Capacity int   `json:"capacity"`

	// Preferences is the order in which this run explored targets.
	Preferences []int64 `json:"preferences"`

	// Proposed lists the targets consumed from Preferences.
	Proposed []int64 `json:"proposed"`

	// Group is the output group id, or -1 when unmatched.
	Group int `json:"group"`
}

// Result is the outcome of one matching run.
type Result struct {
	Groups    []Group `json:"groups"`
	Unmatched []int64 `json:"unmatched"`
	Views     []View  `json:"views"`
	Steps     int     `json:"steps"`

	// Truncated is set when the step guard stopped the run early.
	Truncated bool `json:"truncated"`
}

// Option configures a single run.
type Option func(*runConfig)

type runConfig struct {
	order []int
	prefs [][]preference.Edge
}

// WithQueueOrder sets the initial free-queue order as arena indices.
// Indices not listed are appended in arena order.
func WithQueueOrder(order []int) Option {
	return func(c *runConfig) { c.order = order }
}

// WithPreferences replaces each participant's exploration order. Similarity
// values must be the matrix's own; only their order may differ.
func WithPreferences(prefs [][]preference.Edge) Option {
	return func(c *runConfig) { c.prefs = prefs }
}

// run is the mutable arena for one matching run.
type run struct {
	m        *preference.Matrix
	prefs    [][]preference.Edge
	capacity []int
	cursor   []int
	group    []int
	groups   [][]int
	queue    []int
	inQueue  []bool
	steps    int
}

// Match runs deferred acceptance over m.
func Match(m *preference.Matrix, opts ...Option) *Result {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := m.Len()
	r := &run{
		m:        m,
		prefs:    make([][]preference.Edge, n),
		capacity: make([]int, n),
		cursor:   make([]int, n),
		group:    make([]int, n),
		inQueue:  make([]bool, n),
		queue:    make([]int, 0, n),
	}

	maxCap := 1
	for i, p := range m.Participants() {
		r.capacity[i] = p.Capacity
		if p.Capacity > maxCap {
			maxCap = p.Capacity
		}
		r.group[i] = unassigned
		r.prefs[i] = p.Preferences
		if cfg.prefs != nil && cfg.prefs[i] != nil {
			r.prefs[i] = cfg.prefs[i]
		}
	}

	for _, i := range cfg.order {
		if i >= 0 && i < n {
			r.enqueue(i)
		}
	}
	for i := 0; i < n; i++ {
		r.enqueue(i)
	}

	guard := n + n*n*(2*maxCap+6)
	truncated := false

	for len(r.queue) > 0 {
		if r.steps >= guard {
			truncated = true
			break
		}
		r.steps++

		p := r.queue[0]
		r.queue = r.queue[1:]
		r.inQueue[p] = false

		if r.fullFor(p) {
			continue
		}
		t, ok := r.nextTarget(p)
		if !ok {
			// Exhausted: p keeps whatever group it has and stops proposing.
			continue
		}
		r.propose(p, t)
	}

	return r.result(truncated)
}

func (r *run) enqueue(i int) {
	if r.inQueue[i] {
		return
	}
	r.inQueue[i] = true
	r.queue = append(r.queue, i)
}

// requeueIfOpen returns i to the queue when it can still grow its situation.
func (r *run) requeueIfOpen(i int) {
	if r.cursor[i] >= len(r.prefs[i]) || r.fullFor(i) {
		return
	}
	r.enqueue(i)
}

// fullFor reports whether i's group has reached i's capacity + 1.
func (r *run) fullFor(i int) bool {
	g := r.group[i]
	return g != unassigned && len(r.groups[g]) >= r.capacity[i]+1
}

func (r *run) maxSize(g int) int {
	maxCap := 0
	for _, m := range r.groups[g] {
		if r.capacity[m] > maxCap {
			maxCap = r.capacity[m]
		}
	}
	return maxCap + 1
}

// nextTarget consumes p's preferences until it finds one outside p's group.
func (r *run) nextTarget(p int) (int, bool) {
	for r.cursor[p] < len(r.prefs[p]) {
		t := r.prefs[p][r.cursor[p]].Target
		r.cursor[p]++
		if r.group[p] != unassigned && r.group[t] == r.group[p] {
			continue
		}
		return t, true
	}
	return 0, false
}

func (r *run) propose(p, t int) {
	gt := r.group[t]

	if gt == unassigned {
		if gp := r.group[p]; gp == unassigned {
			r.newGroup(p, t)
		} else {
			r.join(t, gp)
		}
		r.requeueIfOpen(p)
		r.requeueIfOpen(t)
		return
	}

	pAvg := r.avgTo(p, r.groups[gt])

	// A grouped proposer only moves to a group it likes more than its own.
	if gp := r.group[p]; gp != unassigned && pAvg <= r.avgTo(p, r.groups[gp]) {
		r.enqueue(p)
		return
	}

	if len(r.groups[gt]) < r.maxSize(gt) {
		r.move(p, gt)
		r.requeueGroup(gt)
		return
	}

	weakest, weakestAvg := r.weakest(gt)
	if pAvg > weakestAvg {
		r.leave(weakest)
		r.enqueue(weakest)
		r.move(p, gt)
		r.trim(gt)
		r.requeueGroup(gt)
		return
	}

	// Rejected: p tries its next preference.
	r.enqueue(p)
}

func (r *run) newGroup(a, b int) {
	id := len(r.groups)
	r.groups = append(r.groups, []int{a, b})
	r.group[a] = id
	r.group[b] = id
}

func (r *run) join(i, g int) {
	r.groups[g] = append(r.groups[g], i)
	r.group[i] = g
}

// move takes p out of its current group, if any, and into g.
func (r *run) move(p, g int) {
	if old := r.group[p]; old != unassigned {
		r.leave(p)
		r.releaseRemainder(old)
	}
	r.join(p, g)
}

// leave removes i from its group without touching the remaining members.
func (r *run) leave(i int) {
	g := r.group[i]
	members := r.groups[g]
	for k, m := range members {
		if m == i {
			r.groups[g] = append(members[:k:k], members[k+1:]...)
			break
		}
	}
	r.group[i] = unassigned
}

// releaseRemainder dissolves a group left with one member, sheds the weakest
// members of a group that outgrew its remaining capacities, and requeues any
// members that now have room.
func (r *run) releaseRemainder(g int) {
	members := r.groups[g]
	if len(members) == 1 {
		lone := members[0]
		r.groups[g] = nil
		r.group[lone] = unassigned
		r.requeueIfOpen(lone)
		return
	}
	r.trim(g)
	r.requeueGroup(g)
}

// trim sheds the weakest members until g fits its members' capacities.
func (r *run) trim(g int) {
	for len(r.groups[g]) > r.maxSize(g) {
		w, _ := r.weakest(g)
		r.leave(w)
		r.enqueue(w)
	}
}

func (r *run) requeueGroup(g int) {
	for _, m := range r.groups[g] {
		r.requeueIfOpen(m)
	}
}

// weakest returns the member of g with the lowest average similarity to the
// rest of g. Ties resolve to the earliest admitted member.
func (r *run) weakest(g int) (int, float64) {
	members := r.groups[g]
	best, bestAvg := members[0], r.avgTo(members[0], members)
	for _, m := range members[1:] {
		if avg := r.avgTo(m, members); avg < bestAvg {
			best, bestAvg = m, avg
		}
	}
	return best, bestAvg
}

// avgTo is i's mean similarity toward every other index in members.
func (r *run) avgTo(i int, members []int) float64 {
	var sum float64
	count := 0
	for _, m := range members {
		if m == i {
			continue
		}
		sum += r.m.Similarity(i, m)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func (r *run) result(truncated bool) *Result {
	n := r.m.Len()
	out := &Result{Steps: r.steps, Truncated: truncated}
	outGroup := make([]int, n)
	for i := range outGroup {
		outGroup[i] = unassigned
	}

	for _, members := range r.groups {
		if len(members) < 2 {
			continue
		}
		g := Group{ID: len(out.Groups), Members: make([]Member, len(members))}
		for k, i := range members {
			g.Members[k] = Member{
				Index:         i,
				ID:            r.m.Participant(i).ID,
				AvgSimilarity: r.avgTo(i, members),
			}
			outGroup[i] = g.ID
		}
		out.Groups = append(out.Groups, g)
	}

	out.Views = make([]View, n)
	for i := 0; i < n; i++ {
		prefs := make([]int64, len(r.prefs[i]))
		for k, e := range r.prefs[i] {
			prefs[k] = e.TargetID
		}
		id := r.m.Participant(i).ID
		out.Views[i] = View{
			ID:          id,
			Capacity:    r.capacity[i],
			Preferences: prefs,
			Proposed:    prefs[:r.cursor[i]],
			Group:       outGroup[i],
		}
		if outGroup[i] == unassigned {
			out.Unmatched = append(out.Unmatched, id)
		}
	}

	return out
}
