package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindMalformedPayload Kind = "malformed_payload"
	KindInvalidSignature Kind = "invalid_signature"
	KindUnauthorized     Kind = "unauthorized"
	KindIntegration      Kind = "integration"
	KindConfiguration    Kind = "configuration"
	KindInternal         Kind = "internal"
)

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrMalformedPayload = &Error{Kind: KindMalformedPayload}
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrIntegration      = &Error{Kind: KindIntegration}
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrInternal         = &Error{Kind: KindInternal}
)

// Error carries a client-safe Message and an optional internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Conflict(message string, err error) *Error {
	return Wrap(KindConflict, message, err)
}

func MalformedPayload(message string, err error) *Error {
	return Wrap(KindMalformedPayload, message, err)
}

func InvalidSignature() *Error {
	return New(KindInvalidSignature, "Invalid signature")
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Integration(message string, err error) *Error {
	return Wrap(KindIntegration, message, err)
}

func Configuration(message string) *Error {
	return New(KindConfiguration, message)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// HTTPStatus maps a Kind to the response code clients see.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindMalformedPayload, KindInvalidSignature:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// From returns the *Error in err's chain, or nil.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
