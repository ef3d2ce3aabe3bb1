// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package engine

import "time"

// Event types published by the engine.
const (
	EventOptionsComputed       = "options.computed"
	EventFeedbackApplied       = "feedback.applied"
	EventRecommendationsServed = "recommendations.served"
)

// Event is an outcome announcement for the mutation collaborator.
type Event struct {
	// Type is one of the Event* constants and selects the topic.
	Type string `json:"type"`

	// Key identifies the subject of the event, e.g. a request or user id.
	Key string `json:"key"`

	// Payload is the JSON-encodable response that produced the event.
	Payload any `json:"payload"`

	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
