// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/recommend"
	"github.com/tomtom215/roommatch/internal/match/similarity"
	"github.com/tomtom215/roommatch/internal/metrics"
	"github.com/tomtom215/roommatch/internal/validation"
)

const cacheName = "recommendations"

// RecommendRequest asks for the top one-to-one candidates of a subject.
type RecommendRequest struct {
	SubjectID int64 `json:"subject_id"`

	// Limit is the result size. Zero selects the configured default; values
	// above the configured maximum are capped.
	Limit int `json:"limit,omitempty"`
}

// RecommendResponse is a ranked candidate list.
type RecommendResponse struct {
	RequestID       string                     `json:"request_id"`
	SubjectID       int64                      `json:"subject_id"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Skipped         int                        `json:"skipped,omitempty"`
	Cached          bool                       `json:"cached"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}

// cachedList is the full ranked list kept per subject.
type cachedList = []recommend.Recommendation

// Recommend ranks the subject's candidates by adjusted similarity.
//
// The full list up to the configured maximum is cached per subject and
// sliced to the requested limit, so different limits share one entry.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	start := e.now()
	e.recommends.Add(1)

	resp, err := e.recommend(ctx, req)

	returned := 0
	if resp != nil {
		returned = len(resp.Recommendations)
	}
	metrics.RecordRecommendation(e.now().Sub(start), returned, err)

	if err != nil {
		return nil, e.fail(err)
	}
	return resp, nil
}

func (e *Engine) recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	limit := e.recommender.Limit(req.Limit)

	if full, ok := e.cachedRecommendations(req.SubjectID); ok {
		return &RecommendResponse{
			RequestID:       requestID(ctx),
			SubjectID:       req.SubjectID,
			Recommendations: truncate(full, limit),
			Cached:          true,
			GeneratedAt:     e.now().UTC(),
		}, nil
	}

	subject, err := e.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	records, err := e.provider.Candidates(ctx, req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("load candidates for %d: %w", req.SubjectID, err)
	}
	rejections, err := e.provider.Rejections(ctx, req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("load rejections for %d: %w", req.SubjectID, err)
	}

	log := e.ctxLogger(ctx)
	candidates := make([]recommend.Candidate, 0, len(records))
	skipped := 0
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := validation.ValidateRecord(records[i]); err != nil {
			skipped++
			log.Warn().Err(err).Int64("candidate_id", records[i].ID()).Msg("Skipping invalid candidate")
			continue
		}
		res, err := e.scorer.Score(subject, records[i])
		if err != nil {
			return nil, fmt.Errorf("recommend for %d: %w", req.SubjectID, err)
		}
		candidates = append(candidates, recommend.Candidate{Record: records[i], Similarity: res.Similarity})
	}

	full, err := e.recommender.Rank(subject, candidates, rejections, e.cfg.Recommend.MaxK)
	if err != nil {
		return nil, fmt.Errorf("recommend for %d: %w", req.SubjectID, err)
	}
	e.storeRecommendations(req.SubjectID, full)

	resp := &RecommendResponse{
		RequestID:       requestID(ctx),
		SubjectID:       req.SubjectID,
		Recommendations: truncate(full, limit),
		Skipped:         skipped,
		GeneratedAt:     e.now().UTC(),
	}

	log.Debug().
		Int64("subject_id", req.SubjectID).
		Int("candidates", len(records)).
		Int("returned", len(resp.Recommendations)).
		Msg("Recommendations ranked")

	e.publish(ctx, Event{
		Type:          EventRecommendationsServed,
		Key:           strconv.FormatInt(req.SubjectID, 10),
		Payload:       resp,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
	})

	return resp, nil
}

func (e *Engine) cachedRecommendations(subjectID int64) (cachedList, bool) {
	if e.cache == nil {
		return nil, false
	}
	full, ok := e.cache.Get(subjectID)
	metrics.RecordCacheLookup(cacheName, ok)
	if ok {
		e.cacheHits.Add(1)
	} else {
		e.cacheMisses.Add(1)
	}
	return full, ok
}

func (e *Engine) storeRecommendations(subjectID int64, full cachedList) {
	if e.cache == nil {
		return
	}
	e.cache.Add(subjectID, full)
	metrics.SetCacheEntries(cacheName, e.cache.Len())
}

// InvalidateRecommendations drops the cached list of a subject.
func (e *Engine) InvalidateRecommendations(subjectID int64) {
	if e.cache != nil && e.cache.Remove(subjectID) {
		metrics.SetCacheEntries(cacheName, e.cache.Len())
	}
}

func truncate(full cachedList, limit int) []recommend.Recommendation {
	if len(full) > limit {
		full = full[:limit]
	}
	out := make([]recommend.Recommendation, len(full))
	copy(out, full)
	return out
}

// Score returns the directional similarity of target as seen by subject,
// with its per-attribute breakdown.
func (e *Engine) Score(ctx context.Context, subjectID, targetID int64) (similarity.Result, error) {
	subject, err := e.loadSubject(ctx, subjectID)
	if err != nil {
		return similarity.Result{}, e.fail(err)
	}
	target, err := e.loadRecord(ctx, targetID)
	if err != nil {
		return similarity.Result{}, e.fail(err)
	}

	res, err := e.scorer.Score(subject, target)
	if err != nil {
		return similarity.Result{}, e.fail(fmt.Errorf("score: %w", err))
	}
	return res, nil
}

// loadSubject loads, overlays and validates a scoring subject.
func (e *Engine) loadSubject(ctx context.Context, id int64) (match.Record, error) {
	r, err := e.provider.Record(ctx, id)
	if err != nil {
		return match.Record{}, fmt.Errorf("load subject %d: %w", id, err)
	}
	if r, err = e.withWeights(ctx, r); err != nil {
		return match.Record{}, err
	}
	if err := validation.ValidateRecord(r); err != nil {
		return match.Record{}, validation.AsMatchError(err)
	}
	return r, nil
}

// loadRecord loads and validates a non-subject record.
func (e *Engine) loadRecord(ctx context.Context, id int64) (match.Record, error) {
	r, err := e.provider.Record(ctx, id)
	if err != nil {
		return match.Record{}, fmt.Errorf("load record %d: %w", id, err)
	}
	if err := validation.ValidateRecord(r); err != nil {
		return match.Record{}, validation.AsMatchError(err)
	}
	return r, nil
}
