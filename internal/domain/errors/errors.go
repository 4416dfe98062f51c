// Package errors defines the error taxonomy shared by the credit pipeline and chat.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without inspecting messages.
type Kind string

const (
	KindExtractionFailed       Kind = "EXTRACTION_FAILED"
	KindModelUnavailable       Kind = "MODEL_UNAVAILABLE"
	KindModelResponseMalformed Kind = "MODEL_RESPONSE_MALFORMED"
	KindRequestNotFound        Kind = "REQUEST_NOT_FOUND"
	KindPersistenceFailed      Kind = "PERSISTENCE_FAILED"
	KindInvalidInput           Kind = "INVALID_INPUT"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindBureauUnavailable      Kind = "BUREAU_UNAVAILABLE"
	KindInternal               Kind = "INTERNAL"
)

// Retryable reports whether a caller may reasonably repeat the operation.
func (k Kind) Retryable() bool {
	return k == KindModelUnavailable || k == KindPersistenceFailed || k == KindBureauUnavailable
}

// Error is a classified failure carrying the pipeline stage it came from.
type Error struct {
	Kind      Kind           `json:"code"`
	Message   string         `json:"message"`
	Stage     string         `json:"stage,omitempty"`
	Cause     error          `json:"-"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Stage != "" {
		prefix += "[" + e.Stage + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// WithStage returns a copy tagged with the pipeline stage that produced the error.
func (e *Error) WithStage(stage string) *Error {
	c := *e
	c.Stage = stage
	return &c
}

// WithDetails returns a copy carrying additional details.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := *e
	c.Details = details
	return &c
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: kind.Retryable()}
}

// Wrap classifies err under kind. Already classified errors keep their kind.
func Wrap(err error, kind Kind, message string) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{Kind: kind, Message: message, Cause: err, Retryable: kind.Retryable()}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrExtractionFailed       = New(KindExtractionFailed, "document text could not be extracted")
	ErrModelUnavailable       = New(KindModelUnavailable, "language model unavailable")
	ErrModelResponseMalformed = New(KindModelResponseMalformed, "language model response malformed")
	ErrRequestNotFound        = New(KindRequestNotFound, "application request not found")
	ErrPersistenceFailed      = New(KindPersistenceFailed, "persistence failed")
	ErrInvalidInput           = New(KindInvalidInput, "invalid input provided")
	ErrInvalidTransition      = New(KindInvalidTransition, "invalid status transition")
	ErrBureauUnavailable      = New(KindBureauUnavailable, "credit bureau unavailable")
)
