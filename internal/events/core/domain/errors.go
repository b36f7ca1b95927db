package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamRejected    = errors.New("upstream rejected event")
)

// Violation is one failed rule. Reason never contains the offending value.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates every violation found in one request.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Violations accumulates rule failures for a single ValidationError.
type Violations []Violation

func (v *Violations) Add(field, reason string) {
	*v = append(*v, Violation{Field: field, Reason: reason})
}

func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	out := make([]Violation, len(v))
	copy(out, v)
	return &ValidationError{Violations: out}
}

// UpstreamUnavailableError means the provider could not be reached.
type UpstreamUnavailableError struct {
	Timeout bool
	Err     error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %v", ErrUpstreamUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrUpstreamUnavailable, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

func (e *UpstreamUnavailableError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// UpstreamRejectedError means the provider answered with a non-2xx status.
// Body is the provider's response with credentials removed.
type UpstreamRejectedError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrUpstreamRejected, e.StatusCode)
}

func (e *UpstreamRejectedError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

// RelayError is what the relay use case returns on failure.
type RelayError struct {
	RequestID string
	Stage     Stage
	Err       error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("request %s failed while %s: %v", e.RequestID, e.Stage, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }
