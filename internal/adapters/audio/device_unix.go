//go:build unix

package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// errLockHeld means another process holds the capture lock
var errLockHeld = errors.New("capture lock held by another process")

// acquireCaptureLock takes a non-blocking exclusive flock on the lock file,
// so only one client at a time can own the microphone.
func acquireCaptureLock(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture lock: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, errLockHeld
		}
		return nil, fmt.Errorf("failed to lock capture lock: %w", err)
	}

	return file, nil
}

// releaseCaptureLock drops the flock and closes the file
func releaseCaptureLock(file *os.File) {
	if file == nil {
		return
	}
	_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
	_ = file.Close()
}

// interruptProcess asks the capture process to finish cleanly; ffmpeg
// finalizes its output on SIGINT.
func interruptProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errors.New("process not started")
	}
	return cmd.Process.Signal(os.Interrupt)
}
