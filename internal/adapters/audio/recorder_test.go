//go:build unix

package audio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

// The tests drive the recorder with plain shell utilities instead of ffmpeg:
// "yes" stands in for a capture process that streams to stdout until
// interrupted, "false" for one that exits immediately because the device
// could not be opened.

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "capture.lock")
}

func TestStop_WithoutCapture_IsNoop(t *testing.T) {
	recorder := NewRecorder("yes", lockPath(t))

	clip, err := recorder.Stop()

	require.NoError(t, err)
	assert.True(t, clip.Empty())
	assert.False(t, recorder.Recording())
}

func TestStart_ImmediateExit_ReportsDeviceUnavailable(t *testing.T) {
	recorder := NewRecorder("false", lockPath(t))

	err := recorder.Start(context.Background())

	require.ErrorIs(t, err, domain.ErrDeviceUnavailable)
	assert.False(t, recorder.Recording())
}

func TestStart_MissingBinary_ReportsDeviceUnavailable(t *testing.T) {
	recorder := NewRecorder("definitely-not-a-real-capture-binary", lockPath(t))

	err := recorder.Start(context.Background())

	require.ErrorIs(t, err, domain.ErrDeviceUnavailable)
	assert.False(t, recorder.Recording())
}

func TestStartStop_ProducesClip(t *testing.T) {
	recorder := NewRecorder("yes", lockPath(t))

	require.NoError(t, recorder.Start(context.Background()))
	assert.True(t, recorder.Recording())

	clip, err := recorder.Stop()

	require.NoError(t, err)
	assert.NotEmpty(t, clip.Data)
	assert.Equal(t, "audio/wav", clip.MIME)
	assert.False(t, recorder.Recording())
}

func TestStart_WhileCapturing_ReturnsCaptureActive(t *testing.T) {
	recorder := NewRecorder("yes", lockPath(t))

	require.NoError(t, recorder.Start(context.Background()))
	defer recorder.Stop()

	err := recorder.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrCaptureActive)
}

func TestStart_LockHeldByOtherRecorder_ReturnsCaptureActive(t *testing.T) {
	path := lockPath(t)
	first := NewRecorder("yes", path)
	second := NewRecorder("yes", path)

	require.NoError(t, first.Start(context.Background()))

	err := second.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrCaptureActive)

	_, err = first.Stop()
	require.NoError(t, err)

	// Releasing the capture releases the lock too
	require.NoError(t, second.Start(context.Background()))
	_, err = second.Stop()
	require.NoError(t, err)
}
