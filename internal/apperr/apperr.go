// Package apperr models the error taxonomy surfaced by the service layer.
// Handlers map kinds to HTTP statuses; raw upstream detail stays in logs.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindValidation is malformed caller input. Surfaced immediately, no retry.
	KindValidation Kind = iota
	// KindUnavailable is a provider that is unconfigured, unreachable or timed
	// out. Retryable by the caller.
	KindUnavailable
	// KindNoContext means retrieval legitimately found nothing for a question.
	KindNoContext
	// KindNoMatches means the full-text index matched zero videos for a keyword.
	KindNoMatches
	// KindBadUpstream is a model response that stayed malformed after the
	// correction heuristics. Permanent for this request.
	KindBadUpstream
	// KindPersistence is a storage write failure.
	KindPersistence
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err and whether err carries one.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Status maps an error to the HTTP status a handler should respond with.
func Status(err error) int {
	k, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNoContext, KindNoMatches:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a caller-safe message for err. Upstream detail is stripped
// for kinds where leaking provider errors would expose internals.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return "internal server error"
	}
	switch ae.Kind {
	case KindUnavailable, KindBadUpstream:
		return "failed to get a response from the AI model"
	default:
		return ae.Msg
	}
}
