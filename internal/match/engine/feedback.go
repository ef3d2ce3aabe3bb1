// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/similarity"
	"github.com/tomtom215/roommatch/internal/metrics"
)

// FeedbackRequest reports the outcome of a recommendation.
type FeedbackRequest struct {
	SubjectID int64         `json:"subject_id"`
	TargetID  int64         `json:"target_id"`
	Outcome   match.Outcome `json:"outcome"`
}

// FeedbackResponse carries the adjusted weight vector.
type FeedbackResponse struct {
	ID          string                  `json:"id"`
	SubjectID   int64                   `json:"subject_id"`
	TargetID    int64                   `json:"target_id"`
	Outcome     match.Outcome           `json:"outcome"`
	Weights     match.Weights           `json:"weights"`
	Adjustments []similarity.Adjustment `json:"adjustments"`

	// Persisted reports whether the weights were written to the store.
	// Without a store the caller is responsible for persisting Weights.
	Persisted bool `json:"persisted"`
}

// ApplyFeedback nudges the subject's weights toward the attributes that
// drove the outcome with the target, persists them when a store is
// configured, and invalidates the subject's cached recommendations.
func (e *Engine) ApplyFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	e.feedback.Add(1)

	resp, err := e.applyFeedback(ctx, req)
	if err != nil {
		return nil, e.fail(err)
	}
	return resp, nil
}

func (e *Engine) applyFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	if !req.Outcome.Valid() {
		return nil, fmt.Errorf("apply feedback: %w", &match.InvalidAttributeError{
			Attribute: "outcome", Value: string(req.Outcome),
		})
	}

	subject, err := e.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	target, err := e.loadRecord(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}

	breakdown, err := similarity.Breakdown(subject, target)
	if err != nil {
		return nil, fmt.Errorf("apply feedback: %w", err)
	}
	weights, changes, err := similarity.AdjustWeights(subject.Profile.Weights, breakdown, req.Outcome, e.cfg.Feedback)
	if err != nil {
		return nil, err
	}

	resp := &FeedbackResponse{
		ID:          uuid.NewString(),
		SubjectID:   req.SubjectID,
		TargetID:    req.TargetID,
		Outcome:     req.Outcome,
		Weights:     weights,
		Adjustments: changes,
	}

	if e.store != nil {
		if err := e.persistFeedback(ctx, resp, subject.Profile.Weights); err != nil {
			return nil, err
		}
		resp.Persisted = true
	}

	e.InvalidateRecommendations(req.SubjectID)

	metrics.RecordFeedback(req.Outcome)
	for _, c := range changes {
		metrics.RecordWeightAdjustment(c.Attribute, c.Before, c.After)
	}

	log := e.ctxLogger(ctx)
	log.Info().
		Int64("subject_id", req.SubjectID).
		Int64("target_id", req.TargetID).
		Str("outcome", string(req.Outcome)).
		Int("adjustments", len(changes)).
		Bool("persisted", resp.Persisted).
		Msg("Feedback applied")

	e.publish(ctx, Event{
		Type:          EventFeedbackApplied,
		Key:           strconv.FormatInt(req.SubjectID, 10),
		Payload:       resp,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
	})

	return resp, nil
}

func (e *Engine) persistFeedback(ctx context.Context, resp *FeedbackResponse, before match.Weights) error {
	err := e.store.SaveWeights(ctx, resp.SubjectID, resp.Weights)
	metrics.RecordWeightStoreOp("save", err)
	if err != nil {
		return fmt.Errorf("save weights for %d: %w", resp.SubjectID, err)
	}

	err = e.store.AppendFeedback(ctx, match.FeedbackEntry{
		ID:        resp.ID,
		SubjectID: resp.SubjectID,
		TargetID:  resp.TargetID,
		Outcome:   resp.Outcome,
		Before:    before.Clone(),
		After:     resp.Weights.Clone(),
		CreatedAt: e.now().UTC(),
	})
	metrics.RecordWeightStoreOp("append_feedback", err)
	if err != nil {
		return fmt.Errorf("append feedback for %d: %w", resp.SubjectID, err)
	}
	return nil
}
