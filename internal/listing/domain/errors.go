package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks malformed or out-of-range input. ValidationError and
	// InvalidParameterError both wrap it.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrForbidden means the caller is not the owner of the listing.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound means no listing or user matches the id.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a transient storage fault; the call is safe to retry.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrInternal marks an unexpected failure.
	ErrInternal = errors.New("internal error")
)

// FieldError describes one offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that violated an invariant.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Add records a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// InvalidParameterError is returned by the filter compiler for a query parameter
// that cannot be coerced or is out of range.
type InvalidParameterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidInput }

// RuleError is a business-rule rejection whose message is safe to show callers.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return ErrInvalidInput }

// ErrSelfContact rejects a contact request sent to one's own listing.
var ErrSelfContact = &RuleError{Message: "You cannot contact yourself"}
