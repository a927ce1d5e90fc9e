//go:build darwin

package audio

import "fmt"

// defaultCaptureCommand records the default avfoundation audio device
// through ffmpeg. ":0" is audio-only input from device 0.
func defaultCaptureCommand() []string {
	return []string{
		"ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", "avfoundation",
		"-i", ":0",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-af", "afftdn",
		"-f", "wav",
		"-",
	}
}
