package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/theme"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("🎙  ASR-NANO — English Speaking Practice"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(theme.ErrorStyle.Render(formatErrorForDisplay(m.err, m.contentWidth())))
		b.WriteString("\n\n")
	}

	switch m.phase {
	case phaseIdle:
		b.WriteString(m.viewIdle())
	case phaseStarting:
		b.WriteString(fmt.Sprintf("%s Starting conversation...", m.spinner.View()))
	case phaseActive:
		b.WriteString(m.viewConversation())
		b.WriteString(m.viewActiveControls())
	case phaseCapturing:
		b.WriteString(m.viewConversation())
		b.WriteString(m.viewRecording())
	case phaseClipReady:
		b.WriteString(m.viewConversation())
		b.WriteString(m.viewClipReady())
	case phaseSubmitting:
		b.WriteString(m.viewConversation())
		b.WriteString(fmt.Sprintf("\n%s Processing your speech...\n", m.spinner.View()))
		b.WriteString(theme.MutedStyle.Render("Transcribing and getting the coach's feedback"))
	case phaseCompleting:
		b.WriteString(m.viewConversation())
		if m.err == nil {
			b.WriteString(fmt.Sprintf("\n%s Requesting your IELTS evaluation...\n", m.spinner.View()))
		} else {
			b.WriteString(theme.HelpStyle.Render("enter: retry evaluation • n: new conversation • q: quit"))
		}
	case phaseCompleted:
		b.WriteString(m.viewCompleted())
	}

	return b.String()
}

func (m *Model) viewIdle() string {
	var b strings.Builder

	if m.scenarios == nil {
		if m.err == nil {
			b.WriteString(fmt.Sprintf("%s Loading scenarios...", m.spinner.View()))
		} else {
			b.WriteString(theme.HelpStyle.Render("r: retry loading scenarios • q: quit"))
		}
		return b.String()
	}

	if m.scenarioForm != nil {
		b.WriteString(m.scenarioForm.View())
		return b.String()
	}

	if scenario := m.selectedScenario(); scenario != nil {
		var box strings.Builder
		box.WriteString(theme.SubtitleStyle.Render(domain.ScenarioEmoji(scenario.ID) + " " + scenario.Title))
		box.WriteString("\n\n")
		box.WriteString(theme.NormalStyle.Render("🎯 Goal: " + scenario.Goal))
		if len(scenario.Steps) > 0 {
			box.WriteString("\n\n" + theme.NormalStyle.Render("📋 Steps:"))
			for i, step := range scenario.Steps {
				box.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
			}
		}
		b.WriteString(theme.ScenarioBoxStyle.Render(box.String()))
		b.WriteString("\n")
	}

	b.WriteString(theme.HelpStyle.Render("enter: start conversation • s: change scenario • q: quit"))
	return b.String()
}

// viewConversation renders the opening message and the turn history.
func (m *Model) viewConversation() string {
	var b strings.Builder
	if scenario := m.selectedScenario(); scenario != nil {
		b.WriteString(theme.SubtitleStyle.Render(domain.ScenarioEmoji(scenario.ID) + " " + scenario.Title))
		if m.session != nil {
			b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("  •  %d turns", m.session.TurnCount)))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(m.transcript.View())
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewActiveControls() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render("You'll receive a full IELTS evaluation when the scenario is complete (typically 5-10 turns)."))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("r: record your response • n: new conversation • q: quit"))
	return b.String()
}

func (m *Model) viewRecording() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.RecordingStyle.Render(fmt.Sprintf("● Recording... %s", formatElapsed(m.stopwatch.Elapsed()))))
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render("Speak clearly into your microphone"))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("s: stop recording • q: quit"))
	return b.String()
}

func (m *Model) viewClipReady() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.ReadyStyle.Render("✓ Recording ready!"))
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render("Send it to get the coach's feedback"))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter: send • d: discard • q: quit"))
	return b.String()
}

func (m *Model) viewCompleted() string {
	var b strings.Builder
	b.WriteString(theme.ReadyStyle.Render("🎉 Conversation complete!"))
	if m.session != nil {
		b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("  %d turns", m.session.TurnCount)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.transcript.View())
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("n: practice again • q: quit"))
	return b.String()
}

// refreshTranscript rebuilds the transcript viewport content from the live
// session and scrolls to the newest message.
func (m *Model) refreshTranscript() {
	if m.session == nil {
		m.transcript.SetContent("")
		return
	}

	var b strings.Builder
	b.WriteString(theme.CoachLabelStyle.Render("🤖 Coach"))
	b.WriteString("\n")
	b.WriteString(theme.NormalStyle.Render(m.session.OpeningMessage))
	b.WriteString("\n")

	for _, turn := range m.session.Turns {
		b.WriteString("\n")
		b.WriteString(theme.UserLabelStyle.Render("🧑 You"))
		b.WriteString(theme.TimestampStyle.Render("  " + turn.Timestamp.Local().Format("15:04:05")))
		b.WriteString("\n")
		b.WriteString(theme.NormalStyle.Render(turn.UserTranscript))
		b.WriteString("\n\n")
		b.WriteString(theme.CoachLabelStyle.Render("🤖 Coach"))
		b.WriteString("\n")
		b.WriteString(theme.NormalStyle.Render(turn.CoachReply))
		b.WriteString("\n")
	}

	if m.session.Completed && m.session.FinalEvaluation != "" {
		b.WriteString("\n")
		b.WriteString(theme.EvaluationStyle.Render("⚖  Final IELTS Evaluation\n\n" + m.session.FinalEvaluation))
		b.WriteString("\n")
	}

	m.transcript.SetContent(b.String())
	m.transcript.GotoBottom()
}

func (m *Model) contentWidth() int {
	if m.width > 4 {
		return m.width - 2
	}
	return 78
}

// formatElapsed renders a duration as m:ss, the way the recording timer is
// shown.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
