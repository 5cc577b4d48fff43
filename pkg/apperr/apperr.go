// Package apperr defines the error taxonomy shared by every component.
// Components return these typed errors up the call stack; only the HTTP
// Edge maps a Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure independent of any transport.
type Kind string

const (
	Validation Kind = "validation"
	NotFound   Kind = "not_found"
	Conflict   Kind = "conflict"
	NotReady   Kind = "not_ready"
	Timeout    Kind = "timeout"
	Upstream   Kind = "upstream"
	Internal   Kind = "internal"
)

// Error is a typed, wrappable error carrying a Kind and a user-facing detail
// string. The detail is safe to return verbatim to a client.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind with a detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap creates an Error of the given kind that preserves an underlying
// error's message, per the Upstream propagation policy in the error design.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the Kind of err, defaulting to Internal when err is not
// (or does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) *Error {
	return New(Conflict, fmt.Sprintf(format, args...))
}

func NotReadyf(format string, args ...any) *Error {
	return New(NotReady, fmt.Sprintf(format, args...))
}

func Timeoutf(format string, args ...any) *Error {
	return New(Timeout, fmt.Sprintf(format, args...))
}
