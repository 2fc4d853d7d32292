package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies an analysis failure. Only validation, upstream_timeout, and
// synthesis kinds ever reach the HTTP boundary; upstream_unavailable and
// data_store failures are absorbed into report degradation.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindUpstreamTimeout     Kind = "upstream_timeout"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindSynthesis           Kind = "synthesis"
	KindDataStore           Kind = "data_store"
)

// Error is the structured error surfaced by the orchestrator: a kind plus a
// human-readable message, never a raw provider stack trace.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a structured analysis error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the failure kind from an error chain; unclassified errors
// report an empty Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
