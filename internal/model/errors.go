package model

import (
	"errors"
	"fmt"
)

// ErrPlayerUnavailable means the receiver is unknown or offline. It is a skip
// condition, the order or action is retried on a later cycle.
var ErrPlayerUnavailable = errors.New("player unavailable")

// TransportError is a request to the store backend that never got a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store request %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type UnexpectedStatusError struct {
	URL      string
	Expected int
	Got      int
	Body     string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("store request %s: expected status %d, got %d: %s", e.URL, e.Expected, e.Got, e.Body)
}

// MalformedPayloadError is action data that does not match the shape expected
// for the action name.
type MalformedPayloadError struct {
	ActionName string
	Err        error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: %v", e.ActionName, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }
