package apierror

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/tauhid97k/voters-info-api/internal/db"
	"github.com/tauhid97k/voters-info-api/internal/validation"
)

type Kind string

const (
	KindUnauthorized Kind = "Unauthorized"
	KindForbidden    Kind = "Forbidden"
	KindNotFound     Kind = "NotFound"
	KindValidation   Kind = "ValidationError"
	KindOperational  Kind = "OperationalError"
	KindTimeout      Kind = "Timeout"
	KindUnexpected   Kind = "Unexpected"
)

const (
	msgValidation = "Validation error"
	msgTimeout    = "Request Timeout; please try again"
	msgUnexpected = "Something went wrong"
)

// Error is a failure that knows how it should be presented to the client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []validation.FieldError

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, status int, message string, cause error) *Error {
	if cause == nil {
		cause = eris.New(message)
	} else {
		cause = eris.Wrap(cause, message)
	}
	return &Error{
		Kind:    kind,
		Status:  status,
		Message: message,
		cause:   cause,
	}
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return newError(KindForbidden, http.StatusForbidden, message, nil)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, http.StatusNotFound, message, nil)
}

// Operational is an expected failure whose message is safe to show in production.
func Operational(status int, message string) *Error {
	return newError(KindOperational, status, message, nil)
}

func Validation(fields ...validation.FieldError) *Error {
	e := newError(KindValidation, http.StatusBadRequest, msgValidation, nil)
	e.Fields = fields
	return e
}

func Timeout(cause error) *Error {
	return newError(KindTimeout, http.StatusRequestTimeout, msgTimeout, cause)
}

func Unexpected(cause error) *Error {
	return newError(KindUnexpected, http.StatusInternalServerError, msgUnexpected, cause)
}

// From classifies any error into an *Error. Transaction timeouts become
// Timeout, unknown errors become Unexpected.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, db.ErrTxTimeout) {
		return Timeout(err)
	}
	return Unexpected(err)
}
