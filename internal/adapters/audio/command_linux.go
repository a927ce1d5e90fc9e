//go:build linux

package audio

import "fmt"

// defaultCaptureCommand records the default ALSA device through ffmpeg.
// afftdn handles noise suppression; echo cancellation is left to the
// device (module-echo-cancel on PulseAudio/PipeWire setups).
func defaultCaptureCommand() []string {
	return []string{
		"ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", "alsa",
		"-i", "default",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-af", "afftdn",
		"-f", "wav",
		"-",
	}
}
