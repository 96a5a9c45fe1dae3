// api/schemas/errors.go
package schemas

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy for boundary-crossing page interactions.
// Every failure returned across the session boundary carries exactly one kind;
// callers branch on the kind, never on error strings.
type ErrorKind string

const (
	ErrNotFound        ErrorKind = "not_found"
	ErrNotInteractable ErrorKind = "not_interactable"
	ErrTimeout         ErrorKind = "timeout"
	ErrDetached        ErrorKind = "detached"
	ErrUnknown         ErrorKind = "unknown"
)

// InteractionError wraps a page-interaction failure with its kind, the
// operation that failed and the selector it targeted.
type InteractionError struct {
	Kind     ErrorKind
	Op       string
	Selector string
	Err      error
}

func (e *InteractionError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Selector, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }

// NewInteractionError builds a kinded error for the given operation.
func NewInteractionError(kind ErrorKind, op, selector string, err error) *InteractionError {
	return &InteractionError{Kind: kind, Op: op, Selector: selector, Err: err}
}

// KindOf extracts the error kind from an error chain. Context expiry maps to
// ErrTimeout; anything unrecognized is ErrUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ie *InteractionError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}
	return ErrUnknown
}

// IsTransient reports whether the failure is worth one retry at the field
// level (element not yet attached, visible or enabled).
func IsTransient(err error) bool {
	switch KindOf(err) {
	case ErrNotFound, ErrNotInteractable:
		return true
	}
	return false
}
