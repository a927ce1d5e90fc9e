package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")

	// ErrDeviceUnavailable means the microphone could not be opened: no
	// device, no permission, or the capture command is missing.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrCaptureActive rejects starting a second capture while one is live.
	ErrCaptureActive = errors.New("capture already active")
)

// ServerError means the backend was reachable but answered with a failure
// status. The orchestrator treats it as retryable by the user.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("coach server returned status %d", e.Status)
	}
	return fmt.Sprintf("coach server returned status %d: %s", e.Status, e.Detail)
}

// NetworkError means the backend could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("coach server unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
