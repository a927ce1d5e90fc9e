//go:build windows

package audio

import "fmt"

// defaultCaptureCommand records the default DirectShow audio device
// through ffmpeg.
func defaultCaptureCommand() []string {
	return []string{
		"ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", "dshow",
		"-i", "audio=default",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-af", "afftdn",
		"-f", "wav",
		"-",
	}
}
