package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - app name, titles, coach
	ColorSecondary Color = "86" // Cyan - subtitles
)

// Conversation colors
const (
	ColorCoach     Color = "135" // Purple - coach replies
	ColorUser      Color = "39"  // Blue - user transcripts
	ColorRecording Color = "196" // Red - live capture
	ColorReady     Color = "2"   // Green - clip ready, completion
)

// UI semantic colors
const (
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorNormal    Color = "250" // Default text
	ColorWarning   Color = "3"   // Yellow - hints
)
