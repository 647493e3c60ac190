// Package api implements a read-only client for the DynamicShop web API.
package api

import (
	"errors"
	"fmt"
)

// Client errors.
var (
	ErrTransport         = errors.New("shop API unreachable")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedPayload  = errors.New("malformed response payload")
	ErrInvalidBaseURL    = errors.New("invalid base URL")
	ErrEmptyPathArgument = errors.New("path argument cannot be empty")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Endpoint, ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
