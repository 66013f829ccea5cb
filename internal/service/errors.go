package service

import "errors"

// Error kinds. Every failure returned by the services that the caller can act
// on is an *Error whose Kind is one of these, so errors.Is(err, ErrConflict)
// works. Anything else is an infrastructure failure.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidCode  = errors.New("invalid code")
	ErrAuth         = errors.New("invalid credentials")
	ErrDelivery     = errors.New("delivery failed")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")
)

// Error pairs a kind with a message that is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// PublicMessage returns the caller-safe message carried by err, or fallback
// when err is not a service *Error.
func PublicMessage(err error, fallback string) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return fallback
}
