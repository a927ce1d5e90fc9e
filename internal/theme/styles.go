package theme

import "github.com/charmbracelet/lipgloss"

// Main UI styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(1, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(1, 0)
)

// Conversation styles
var (
	CoachLabelStyle = lipgloss.NewStyle().
			Foreground(ColorCoach).
			Bold(true)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(ColorUser).
			Bold(true)

	RecordingStyle = lipgloss.NewStyle().
			Foreground(ColorRecording).
			Bold(true)

	ReadyStyle = lipgloss.NewStyle().
			Foreground(ColorReady).
			Bold(true)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	EvaluationStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorReady).
			Padding(0, 1)

	ScenarioBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)
