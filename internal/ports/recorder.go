package ports

import (
	"context"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

// Recorder owns the microphone. At most one capture is active at a time.
type Recorder interface {
	// Start begins a bounded capture. It fails with
	// domain.ErrDeviceUnavailable when the device cannot be opened and
	// domain.ErrCaptureActive when a capture is already running; on failure
	// no recording state is entered.
	Start(ctx context.Context) error

	// Stop finalizes the in-progress recording into a single clip and
	// releases the device. Without an active capture it is a no-op that
	// returns an empty clip and no error.
	Stop() (domain.AudioClip, error)

	// Recording reports whether a capture is currently active.
	Recording() bool
}
