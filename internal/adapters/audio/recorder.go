package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
)

// SampleRate is the fixed capture sample rate in Hz.
const SampleRate = 44100

// startupGrace is how long after spawn the capture process is watched for an
// immediate exit, which means the device could not be opened.
const startupGrace = 250 * time.Millisecond

// Recorder implements ports.Recorder by running an external capture process
// (ffmpeg by default) that streams WAV to stdout. The process handle is the
// one exclusively-owned external resource here; every path out of a capture,
// including error paths, must end with the process reaped and the lock
// released.
type Recorder struct {
	command  []string // capture command, empty means per-OS default
	lockPath string

	mu      sync.Mutex
	current *capture
}

// Verify interface compliance at compile time
var _ ports.Recorder = (*Recorder)(nil)

// capture is the state of one in-progress recording
type capture struct {
	cmd      *exec.Cmd
	group    *errgroup.Group
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	lock     *os.File
	done     chan struct{}
	finished bool
}

// NewRecorder creates a recorder. commandOverride, when non-empty, is used
// instead of the platform default capture command (settings `recorder`).
func NewRecorder(commandOverride string, lockPath string) *Recorder {
	var command []string
	if commandOverride != "" {
		command = strings.Fields(commandOverride)
	}
	return &Recorder{command: command, lockPath: lockPath}
}

// Start begins a capture. At most one capture is active at a time, across
// processes: a flock on lockPath keeps two clients from fighting over the
// microphone.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return domain.ErrCaptureActive
	}

	lock, err := acquireCaptureLock(r.lockPath)
	if err != nil {
		if errors.Is(err, errLockHeld) {
			return domain.ErrCaptureActive
		}
		return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}

	args := r.command
	if len(args) == 0 {
		args = defaultCaptureCommand()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cap := &capture{cmd: cmd, lock: lock, done: make(chan struct{})}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		releaseCaptureLock(lock)
		return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		releaseCaptureLock(lock)
		return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}

	if err := cmd.Start(); err != nil {
		releaseCaptureLock(lock)
		logging.Logger.Warn("Capture command failed to start", "command", args[0], "error", err)
		return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}

	// Drain both pipes concurrently; Wait must not run before the pipes are
	// fully read, so it is sequenced after the copies inside the group.
	cap.group = &errgroup.Group{}
	var pipes errgroup.Group
	pipes.Go(func() error {
		_, err := io.Copy(&cap.stdout, stdout)
		return err
	})
	pipes.Go(func() error {
		_, err := io.Copy(&cap.stderr, stderr)
		return err
	})
	cap.group.Go(func() error {
		copyErr := pipes.Wait()
		waitErr := cmd.Wait()
		close(cap.done)
		if waitErr != nil {
			return waitErr
		}
		return copyErr
	})

	// An immediate exit means no device or no permission; fail the start
	// instead of entering recording state.
	select {
	case <-cap.done:
		err := cap.group.Wait()
		releaseCaptureLock(lock)
		logging.Logger.Warn("Capture process exited on startup",
			"error", err,
			"stderr", cap.stderrTail())
		return fmt.Errorf("%w: %s", domain.ErrDeviceUnavailable, cap.stderrTail())
	case <-time.After(startupGrace):
	}

	r.current = cap
	logging.Logger.Info("Capture started", "command", args[0], "sample_rate", SampleRate)
	return nil
}

// Stop finalizes the in-progress recording into a clip and releases the
// device. Without an active capture it is a no-op.
func (r *Recorder) Stop() (domain.AudioClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cap := r.current
	if cap == nil {
		return domain.AudioClip{}, nil
	}
	r.current = nil
	defer releaseCaptureLock(cap.lock)

	if err := interruptProcess(cap.cmd); err != nil {
		logging.Logger.Warn("Failed to interrupt capture process, killing", "error", err)
		_ = cap.cmd.Process.Kill()
	}

	// The process is expected to exit promptly after the interrupt; a stuck
	// encoder gets killed rather than leaking the device.
	select {
	case <-cap.done:
	case <-time.After(3 * time.Second):
		_ = cap.cmd.Process.Kill()
		<-cap.done
	}
	err := cap.group.Wait()

	if cap.stdout.Len() == 0 {
		logging.Logger.Warn("Capture produced no audio",
			"error", err,
			"stderr", cap.stderrTail())
		return domain.AudioClip{}, fmt.Errorf("%w: %s", domain.ErrDeviceUnavailable, cap.stderrTail())
	}

	clip := domain.AudioClip{Data: cap.stdout.Bytes(), MIME: "audio/wav"}
	logging.Logger.Info("Capture stopped", "bytes", len(clip.Data))
	return clip, nil
}

// Recording reports whether a capture is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// stderrTail returns the last line of captured stderr for error messages.
func (c *capture) stderrTail() string {
	lines := strings.Split(strings.TrimSpace(c.stderr.String()), "\n")
	if len(lines) == 0 {
		return "capture process produced no diagnostics"
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
