package event

import "errors"

var (
	// ErrBackendUnavailable means the streaming backend rejected or failed the send.
	ErrBackendUnavailable = errors.New("event backend unavailable")
	// ErrTimeout means the send did not finish within the delivery timeout.
	ErrTimeout = errors.New("event delivery timed out")
	// ErrSerialization means the event could not be encoded. It is not a backend health signal.
	ErrSerialization = errors.New("event serialization failed")
	// ErrCircuitOpen is attached to skipped results while the circuit is not closed.
	ErrCircuitOpen = errors.New("event circuit open")
)

// countsAsFailure reports whether err should be recorded against the breaker.
func countsAsFailure(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrTimeout)
}
