// Package apperr defines the error kinds surfaced by heimdall's API and CLI.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the transport layer can choose a status code.
type Kind string

const (
	// KindValidation indicates a rule payload failed structural validation.
	KindValidation Kind = "validation"
	// KindConflict indicates a category with the same request_type already exists.
	KindConflict Kind = "conflict"
	// KindNotFound indicates the addressed category does not exist.
	KindNotFound Kind = "not_found"
	// KindBadRequest indicates the request body could not be decoded.
	KindBadRequest Kind = "bad_request"
	// KindNoRules indicates classification was requested with an empty rule set.
	KindNoRules Kind = "no_rules"
	// KindPersistence indicates the rules file could not be read or written.
	KindPersistence Kind = "persistence"
	// KindBackendUnavailable indicates the generative backend call failed.
	KindBackendUnavailable Kind = "backend_unavailable"
	// KindUnparseableResponse indicates the backend answered with text that is not a JSON object.
	KindUnparseableResponse Kind = "unparseable_response"
	// KindInternal is used for anything unclassified.
	KindInternal Kind = "internal"
)

// Error is a classified error. Message is safe to show to API callers.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies cause under kind. A nil cause yields nil.
func Wrap(kind Kind, msg string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNoRules:
		return http.StatusConflict
	case KindBackendUnavailable:
		return http.StatusServiceUnavailable
	case KindUnparseableResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
