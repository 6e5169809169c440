// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable category of an error.
type Kind string

const (
	KindAuthentication Kind = "authentication_error"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation_error"
	KindConflict       Kind = "conflict"
	KindEmailDelivery  Kind = "email_delivery_error"
	KindInternal       Kind = "internal_error"
)

// Error carries a Kind and a short message safe to show to the caller.
// Err, when set, is the underlying cause and is never rendered.
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

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is comparisons.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrEmailDelivery  = &Error{Kind: KindEmailDelivery}
)

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Authentication(msg string) *Error { return New(KindAuthentication, msg) }

func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

func NotFound(msg string) *Error { return New(KindNotFound, msg) }

func Validation(msg string) *Error { return New(KindValidation, msg) }

func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Conflict(msg string) *Error { return New(KindConflict, msg) }

// EmailDelivery wraps a gateway failure; the gateway message is surfaced to the caller.
func EmailDelivery(err error) *Error {
	return &Error{Kind: KindEmailDelivery, Message: "email delivery failed: " + err.Error(), Err: err}
}

// Internal wraps an unexpected failure. Its message is generic.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf reports the Kind of err, treating anything unclassified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
