/*
errors.go - Structural errors, kept distinct from policy rejections

PURPOSE:
  A rejected request is a modeled outcome carried in a Decision (decision.go).
  A malformed request - missing required field, unparseable date, zero
  identifier - is a structural error surfaced as an ordinary Go error, so
  callers can distinguish "invalid request" from "policy-denied request".

USAGE:
  if errors.Is(err, engine.ErrMissingField) { ... }

  var ferr *engine.FieldError
  if errors.As(err, &ferr) { log(ferr.Field) }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingField is returned when a required request field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidDate is returned when a date or time field cannot be parsed
	// or is logically impossible (zero checkout date, return before epoch).
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnknownRecord is returned when a request references a record the
	// snapshot was expected to contain for non-policy reasons, e.g. a return
	// against a loan identifier that does not exist.
	ErrUnknownRecord = errors.New("unknown record")

	// ErrLoanClosed is returned when a return targets a loan that is no
	// longer out. Returns are not idempotent: replaying one would assess
	// the fees again.
	ErrLoanClosed = errors.New("loan already closed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending field
// =============================================================================

// FieldError reports a structurally invalid request field.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s (got %q)", e.Field, e.Reason, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// UnknownRecordError reports a reference to a record that is absent from the
// supplied snapshot where policy has no reason code for the absence.
type UnknownRecordError struct {
	Kind string
	ID   string
}

func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("%s %q not found in snapshot", e.Kind, e.ID)
}

func (e *UnknownRecordError) Unwrap() error { return ErrUnknownRecord }

// LoanClosedError reports a return against a loan that has already been
// processed.
type LoanClosedError struct {
	ID     LoanID
	Status LoanStatus
}

func (e *LoanClosedError) Error() string {
	return fmt.Sprintf("loan %q is closed (status %s)", e.ID, e.Status)
}

func (e *LoanClosedError) Unwrap() error { return ErrLoanClosed }

func missingField(field string) error {
	return &FieldError{Field: field, Reason: "must not be empty"}
}
