package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by StreamError.
var (
	// ErrProducer marks a failure inside a chunk producer.
	ErrProducer = errors.New("producer failed")

	// ErrClientDisconnect marks a stream whose client went away.
	ErrClientDisconnect = errors.New("client disconnected")

	// ErrMaxDuration is the cancellation cause of a session that reached
	// the configured maximum duration.
	ErrMaxDuration = errors.New("maximum stream duration reached")
)

// StreamError reports a session that did not run to completion.
// It implements transport.Outcomer so the transport can tell a normal
// cancellation from a failure.
type StreamError struct {
	SessionID string
	Result    string // one of the observability.Outcome* constants
	Err       error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %s: %v", e.SessionID, e.Result, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Outcome implements transport.Outcomer.
func (e *StreamError) Outcome() string { return e.Result }
