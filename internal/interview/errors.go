package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
)

// ErrConfirmationRequired is returned by Submit when the answer is empty
// and the user has not confirmed sending it.
var ErrConfirmationRequired = errors.New("empty answer requires confirmation")

// PreconditionError indicates an operation is not valid in the current state.
type PreconditionError struct {
	Op     string
	Reason string
	Err    error // optional underlying cause
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// DeviceError indicates the capture device could not be acquired.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// PermissionDenied reports whether the OS refused microphone access.
func (e *DeviceError) PermissionDenied() bool {
	return errors.Is(e.Err, capture.ErrPermissionDenied)
}

// TimeoutError indicates an operation exceeded its upper bound.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.After)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// ErrorKind is the user-facing class of an error.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPrecondition
	KindDevice
	KindTimeout
	KindNotActive
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindDevice:
		return "device"
	case KindTimeout:
		return "timeout"
	case KindNotActive:
		return "not-active"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Terminal reports whether errors of this kind end the session.
func (k ErrorKind) Terminal() bool {
	return k == KindNotActive
}

// Classify maps err onto the error taxonomy. Server errors count as
// network-class since both are transient from the user's view.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var (
		pre *PreconditionError
		dev *DeviceError
		to  *TimeoutError
		ne  *api.NetworkError
		se  *api.ServerError
	)
	switch {
	case errors.As(err, &pre), errors.Is(err, ErrConfirmationRequired):
		return KindPrecondition
	case api.IsNotActive(err):
		return KindNotActive
	case errors.As(err, &dev):
		return KindDevice
	case errors.As(err, &to):
		return KindTimeout
	case errors.As(err, &ne), errors.As(err, &se):
		return KindNetwork
	}
	return KindUnknown
}
