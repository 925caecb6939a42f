package api

import (
	"errors"
	"fmt"
)

// ErrNotActive is matched by every NotActiveError via errors.Is.
var ErrNotActive = errors.New("session is not active")

// NotActiveError indicates the server no longer considers the session
// active. It is terminal for the session.
type NotActiveError struct {
	SessionID string
	Message   string
}

func (e *NotActiveError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("session %s is not active: %s", e.SessionID, e.Message)
	}
	return fmt.Sprintf("session %s is not active", e.SessionID)
}

func (e *NotActiveError) Is(target error) bool { return target == ErrNotActive }

// NetworkError indicates the request did not produce a server response
// (connection refused, reset, DNS failure, cancelled in flight).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError indicates the server answered with a non-success status
// that is not a session-state rejection.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server error %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: server error %d", e.Op, e.StatusCode)
}

// IsNotActive reports whether err indicates the session is no longer active.
func IsNotActive(err error) bool {
	return errors.Is(err, ErrNotActive)
}
