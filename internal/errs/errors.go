// Package errs defines the closed error taxonomy used across the knowledge
// engine. Components never return bare errors for expected failures; they
// return an *E carrying a Kind, a human message, and a retryable flag.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a closed set of error categories.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindPolicy     Kind = "policy"
	KindDependency Kind = "dependency"
	KindInternal   Kind = "internal"
)

// E is the sole error type surfaced by the knowledge engine's public API.
type E struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Cause }

// Retryable reports whether a caller may usefully retry the operation.
func (e *E) Retryable() bool {
	switch e.Kind {
	case KindDependency, KindInternal:
		return true
	default:
		return false
	}
}

func new_(kind Kind, msg string, cause error) *E {
	return &E{Kind: kind, Message: msg, Cause: cause}
}

func Validation(msg string) *E { return new_(KindValidation, msg, nil) }
func NotFound(msg string) *E   { return new_(KindNotFound, msg, nil) }
func Conflict(msg string) *E   { return new_(KindConflict, msg, nil) }
func Policy(msg string) *E     { return new_(KindPolicy, msg, nil) }
func Dependency(msg string, cause error) *E {
	return new_(KindDependency, msg, cause)
}
func Internal(msg string, cause error) *E {
	return new_(KindInternal, msg, cause)
}

// Validationf and friends format the message like fmt.Sprintf.
func Validationf(format string, args ...any) *E {
	return Validation(fmt.Sprintf(format, args...))
}
func NotFoundf(format string, args ...any) *E {
	return NotFound(fmt.Sprintf(format, args...))
}

// As reports whether err is (or wraps) an *E, returning it if so.
func As(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the Kind of err if it is an *E, or KindInternal otherwise.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
