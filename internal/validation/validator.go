// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

// Package validation checks matching input records with go-playground/validator
// v10 before they reach the matching core.
//
// The core rejects enum values outside their known set and zero-sum weight
// vectors. This package catches both at the boundary, together with range
// checks for coordinates, counters and weights, and reports every failing
// field at once.
//
// Example usage:
//
//	if err := validation.ValidateRecord(rec); err != nil {
//	    // errors.Is(err, match.ErrInvalidAttribute) or match.ErrZeroWeightSum
//	    return err
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/roommatch/internal/match"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failing field.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the namespaced field that failed validation.
func (e *FieldError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string {
	return e.tag
}

// Param returns the tag parameter, e.g. "1" for "lte=1".
func (e *FieldError) Param() string {
	return e.param
}

// Value returns the rejected value.
func (e *FieldError) Value() interface{} {
	return e.value
}

// Error returns a human-readable message.
func (e *FieldError) Error() string {
	return e.message
}

// RecordValidationError collects every failing field of one record.
type RecordValidationError struct {
	ID     int64
	errors []FieldError
}

// Errors returns the field errors.
func (ve *RecordValidationError) Errors() []FieldError {
	return ve.errors
}

// Error implements the error interface.
func (ve *RecordValidationError) Error() string {
	if len(ve.errors) == 0 {
		return fmt.Sprintf("record %d: validation failed", ve.ID)
	}

	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].Error()
	}
	return fmt.Sprintf("record %d: %s", ve.ID, strings.Join(messages, "; "))
}

// Unwrap maps the failure onto the matching core's sentinel errors so callers
// can use errors.Is with match.ErrZeroWeightSum or match.ErrInvalidAttribute.
func (ve *RecordValidationError) Unwrap() error {
	for i := range ve.errors {
		if ve.errors[i].tag == tagWeightSum {
			return match.ErrZeroWeightSum
		}
	}
	return match.ErrInvalidAttribute
}

const tagWeightSum = "weightsum"

// GetValidator returns the singleton validator instance.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json names so messages match the wire format.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		if err := validate.RegisterValidation(tagWeightSum, validateWeightSum); err != nil {
			panic(fmt.Sprintf("register %s validator: %v", tagWeightSum, err))
		}
	})

	return validate
}

// validateWeightSum requires a numeric map with at least one positive entry.
// Out-of-range entries are left to the per-value range tags.
func validateWeightSum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}

	iter := field.MapRange()
	for iter.Next() {
		v := iter.Value()
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			if v.Float() > 0 {
				return true
			}
		default:
			return false
		}
	}
	return false
}

// ValidateRecord validates a record. It returns nil or a *RecordValidationError.
//
//nolint:gocritic // records are read-only snapshots
func ValidateRecord(r match.Record) error {
	err := GetValidator().Struct(r)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RecordValidationError{
			ID: r.ID(),
			errors: []FieldError{{
				field:   "unknown",
				tag:     "unknown",
				message: err.Error(),
			}},
		}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   trimNamespace(fieldErr.Namespace()),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &RecordValidationError{ID: r.ID(), errors: fieldErrors}
}

// AsMatchError rewraps a validation failure so that the matching core's
// sentinel is the outermost wrapped error. Other errors are returned unchanged.
func AsMatchError(err error) error {
	var ve *RecordValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%w: %s", ve.Unwrap(), ve.Error())
}

// ValidateRecords validates every record and returns the first failure.
func ValidateRecords(records []match.Record) error {
	for i := range records {
		if err := ValidateRecord(records[i]); err != nil {
			return err
		}
	}
	return nil
}

// trimNamespace drops the root struct name, e.g. "Record.profile.pets".
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":   "%s is required",
	"latitude":   "%s must be a valid latitude (-90 to 90)",
	"longitude":  "%s must be a valid longitude (-180 to 180)",
	tagWeightSum: "%s must contain at least one positive weight",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field := trimNamespace(fe.Namespace())
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
