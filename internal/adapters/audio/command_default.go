//go:build !linux && !darwin && !windows

package audio

import "fmt"

// defaultCaptureCommand falls back to ffmpeg's OSS input on platforms
// without a dedicated capture backend; users can override via settings.
func defaultCaptureCommand() []string {
	return []string{
		"ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", "oss",
		"-i", "/dev/dsp",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-af", "afftdn",
		"-f", "wav",
		"-",
	}
}
