package clients

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned without any network attempt while the breaker
// rejects calls.
var ErrCircuitOpen = errors.New("sentiment service circuit breaker is open")

// ClientError is a 4xx from the upstream service. Never retried and never
// counted against the breaker.
type ClientError struct {
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("sentiment service rejected request: status %d: %s", e.StatusCode, e.Body)
}

// ServerError is a 5xx that persisted through every retry attempt.
type ServerError struct {
	StatusCode int
	Attempts   int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("sentiment service returned status %d after %d attempts", e.StatusCode, e.Attempts)
}

// TransientError is a transport-level failure (timeout, connection error)
// that persisted through every retry attempt.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("sentiment service unreachable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
