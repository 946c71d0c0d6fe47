// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these; handlers map the kind to an HTTP status and a single
// user-facing notification.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInternal is the fallback for errors without a classification.
	KindInternal Kind = iota
	// KindValidation: malformed or missing required input.
	KindValidation
	// KindNotFound: referenced entity does not exist in the caller's scope.
	KindNotFound
	// KindAuthorization: caller lacks the required role.
	KindAuthorization
	// KindConflict: rejected before mutation (member limit, duplicate invite).
	KindConflict
	// KindUpstream: a third-party call failed or timed out.
	KindUpstream
)

// Error carries a classification alongside the message. Message is safe to
// surface to the user verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying cause for logs while exposing message to users.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification of err, or KindInternal when it has none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error's kind to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	case KindAuthorization:
		return 403
	case KindConflict:
		return 409
	case KindUpstream:
		return 502
	default:
		return 500
	}
}
