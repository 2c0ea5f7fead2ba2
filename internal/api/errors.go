package api

import (
	"fmt"
	"net/http"
)

// Kind classifies a StatusError by who is at fault.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindUpstream      Kind = "upstream"
	KindInternal      Kind = "internal"
)

// StatusError is an error with an HTTP status code.
// Only ErrorMessage and Received reach the caller; Err is for logs.
type StatusError struct {
	StatusCode   int    `json:"-"`
	Kind         Kind   `json:"-"`
	ErrorMessage string `json:"message"`
	Received     any    `json:"received,omitempty"`
	Err          error  `json:"-"`
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.ErrorMessage, e.Err)
	}
	return e.ErrorMessage
}

func (e *StatusError) Unwrap() error { return e.Err }

// ErrorEnvelope is the body of every failed response: {"error":{"message":...}}.
type ErrorEnvelope struct {
	Error *StatusError `json:"error"`
}

// Envelope wraps the error for serialization.
func (e *StatusError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{Error: e}
}

// ErrConfiguration reports a credential the operator has not set.
func ErrConfiguration(credential string) *StatusError {
	return &StatusError{
		StatusCode:   http.StatusInternalServerError,
		Kind:         KindConfiguration,
		ErrorMessage: credential + " is not configured.",
	}
}

// ErrValidation creates a 400 that echoes what the caller sent.
func ErrValidation(msg string, received any) *StatusError {
	return &StatusError{
		StatusCode:   http.StatusBadRequest,
		Kind:         KindValidation,
		ErrorMessage: msg,
		Received:     received,
	}
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(msg string) *StatusError {
	return &StatusError{
		StatusCode:   http.StatusBadRequest,
		Kind:         KindValidation,
		ErrorMessage: msg,
	}
}

// ErrRequestTooLarge creates a 413 error
func ErrRequestTooLarge(limit int64) *StatusError {
	return &StatusError{
		StatusCode:   http.StatusRequestEntityTooLarge,
		Kind:         KindValidation,
		ErrorMessage: fmt.Sprintf("Request body exceeds %d bytes.", limit),
	}
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(msg string) *StatusError {
	return &StatusError{
		StatusCode:   http.StatusNotFound,
		Kind:         KindValidation,
		ErrorMessage: msg,
	}
}

// ErrInternal creates a 500 with a generic message; cause stays server-side.
func ErrInternal(cause error) *StatusError {
	return &StatusError{
		StatusCode:   http.StatusInternalServerError,
		Kind:         KindInternal,
		ErrorMessage: "Internal server error.",
		Err:          cause,
	}
}

// ErrUpstream forwards a dependency's failing status with a generic message.
func ErrUpstream(status int, msg string, cause error) *StatusError {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &StatusError{
		StatusCode:   status,
		Kind:         KindUpstream,
		ErrorMessage: msg,
		Err:          cause,
	}
}

// ErrBadGateway creates a 502 Bad Gateway error
func ErrBadGateway(msg string, cause error) *StatusError {
	return ErrUpstream(http.StatusBadGateway, msg, cause)
}

// ErrGatewayTimeout creates a 504 Gateway Timeout error
func ErrGatewayTimeout(msg string, cause error) *StatusError {
	return ErrUpstream(http.StatusGatewayTimeout, msg, cause)
}

// WrapError wraps an existing error into a StatusError without exposing it.
func WrapError(err error, code int, msg string) *StatusError {
	kind := KindInternal
	if code < http.StatusInternalServerError {
		kind = KindValidation
	}
	return &StatusError{
		StatusCode:   code,
		Kind:         kind,
		ErrorMessage: msg,
		Err:          err,
	}
}
