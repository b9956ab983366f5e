// Package apperr carries the typed operational errors the core services
// return. Everything here is recoverable and maps to a client-facing
// code; broken invariants are returned as plain errors and surface as
// internal failures.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an operational error.
type Code string

const (
	CodeInvalidState       Code = "INVALID_STATE"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeScoringUnavailable Code = "SCORING_UNAVAILABLE"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeAlreadyGraded      Code = "ALREADY_GRADED"
	CodeConflict           Code = "CONFLICT"
)

// Error is a typed operational error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is match on equal codes, so callers can compare
// against a bare &Error{Code: ...} sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidState marks an operation illegal for the entity's current status.
func InvalidState(format string, args ...any) *Error {
	return newf(CodeInvalidState, format, args...)
}

// Forbidden marks a caller as unauthorized for the target entity.
func Forbidden(format string, args ...any) *Error {
	return newf(CodeForbidden, format, args...)
}

// NotFound marks a missing session/answer/exam.
func NotFound(format string, args ...any) *Error {
	return newf(CodeNotFound, format, args...)
}

// ValidationFailed marks malformed input, e.g. marks outside bounds.
func ValidationFailed(format string, args ...any) *Error {
	return newf(CodeValidationFailed, format, args...)
}

// AlreadyGraded marks a grading call against an answer that already has
// a grade. The existing grade is never overwritten.
func AlreadyGraded(format string, args ...any) *Error {
	return newf(CodeAlreadyGraded, format, args...)
}

// Conflict marks a lost optimistic race, e.g. a concurrent start-exam.
func Conflict(format string, args ...any) *Error {
	return newf(CodeConflict, format, args...)
}

// ScoringUnavailable wraps a failed or timed-out scoring provider call.
// Retryable: nothing was written.
func ScoringUnavailable(cause error) *Error {
	return &Error{Code: CodeScoringUnavailable, Message: "scoring provider unavailable", Err: cause}
}

// CodeOf extracts the operational code from err, or "" for plain errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
