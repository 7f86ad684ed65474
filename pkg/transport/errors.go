package transport

import (
	"errors"
	"fmt"
)

// Operation names a row operation.
type Operation string

const (
	OpSubmit    Operation = "submit"
	OpDelete    Operation = "delete"
	OpRefresh   Operation = "refresh"
	OpFavourite Operation = "favourite"
)

// ErrNoAction is returned when an operation has no endpoint to talk to.
var ErrNoAction = errors.New("transport: form action is empty")

// Error is a transport-level failure: no usable envelope was received.
type Error struct {
	Op     Operation
	Method string
	URL    string
	// StatusCode is 0 when no response arrived.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport: %s %s %s: status %d: %v", e.Op, e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport: %s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// BusinessError is an envelope whose severity reports a failure.
type BusinessError struct {
	Op       Operation
	Envelope *Envelope
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("transport: %s rejected (%s): %s", e.Op, e.Envelope.Severity(), e.Envelope.Message())
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *Error
	return errors.As(err, &te)
}

// IsBusiness reports whether err is a business-level failure.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}
