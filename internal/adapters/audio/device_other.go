//go:build !unix

package audio

import (
	"errors"
	"os"
	"os/exec"
)

// errLockHeld means another process holds the capture lock
var errLockHeld = errors.New("capture lock held by another process")

// acquireCaptureLock has no cross-process lock on non-unix platforms; the
// in-process gate in Recorder still applies.
func acquireCaptureLock(path string) (*os.File, error) {
	return nil, nil
}

// releaseCaptureLock is a no-op on non-unix platforms
func releaseCaptureLock(file *os.File) {}

// interruptProcess kills the capture process; there is no interrupt signal
// to send on this platform.
func interruptProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errors.New("process not started")
	}
	return cmd.Process.Kill()
}
