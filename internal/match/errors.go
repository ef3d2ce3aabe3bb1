// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package match

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAttribute is returned when an attribute value or weight key is
	// outside its known domain.
	ErrInvalidAttribute = errors.New("invalid attribute")

	// ErrZeroWeightSum is returned when a weight vector sums to zero and the
	// weighted mean is undefined.
	ErrZeroWeightSum = errors.New("weight vector sums to zero")

	// ErrUnknownParticipant is returned when an id is not part of the population.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrDuplicateParticipant is returned when an id appears twice in a population.
	ErrDuplicateParticipant = errors.New("duplicate participant")

	// ErrPopulationTooLarge is returned when a matching request exceeds the
	// configured population limit.
	ErrPopulationTooLarge = errors.New("population too large")

	// ErrNotFound is returned by collaborators when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// InvalidAttributeError describes a rejected attribute value.
type InvalidAttributeError struct {
	Attribute Attribute
	Value     string
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("invalid attribute %s: %q", e.Attribute, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidAttribute).
func (e *InvalidAttributeError) Unwrap() error {
	return ErrInvalidAttribute
}
