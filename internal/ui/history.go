package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/services"
	"github.com/Kanompung1988/ASR-NANO/internal/theme"
)

// HistoryModel is the read-only session browser: a list of past practice
// conversations with a transcript detail view. Deleting a session or
// clearing the whole history are the only writes it performs, and those go
// through the store's remover, never through session mutation.
type HistoryModel struct {
	history *services.HistoryService

	sessions []domain.ConversationSession
	cursor   int
	showing  bool // detail view open
	detail   viewport.Model
	err      error
	width    int
	height   int
	quitting bool

	keys historyKeyMap
}

type historyKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Back   key.Binding
	Delete key.Binding
	Quit   key.Binding
}

// NewHistoryModel creates the history browser, loading sessions up front.
func NewHistoryModel(history *services.HistoryService) *HistoryModel {
	m := &HistoryModel{
		history: history,
		detail:  viewport.New(80, 20),
		keys: historyKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k")),
			Down:   key.NewBinding(key.WithKeys("down", "j")),
			Open:   key.NewBinding(key.WithKeys("enter")),
			Back:   key.NewBinding(key.WithKeys("esc")),
			Delete: key.NewBinding(key.WithKeys("d")),
			Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
		},
	}

	sessions, err := history.List(context.Background())
	if err != nil {
		logging.Logger.Warn("Failed to load session history", "error", err)
		m.err = err
	}
	m.sessions = sessions
	return m
}

func (m *HistoryModel) Init() tea.Cmd {
	return nil
}

func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width - 4
		if msg.Height > 8 {
			m.detail.Height = msg.Height - 6
		}
		return m, nil

	case tea.KeyMsg:
		if m.showing {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	if m.showing {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *HistoryModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if len(m.sessions) > 0 {
			m.showing = true
			m.detail.SetContent(renderSessionDetail(m.sessions[m.cursor]))
			m.detail.GotoTop()
		}
	case key.Matches(msg, m.keys.Delete):
		if len(m.sessions) > 0 {
			session := m.sessions[m.cursor]
			if err := m.history.Delete(context.Background(), session.ID); err != nil {
				m.err = err
				return m, nil
			}
			m.sessions = append(m.sessions[:m.cursor], m.sessions[m.cursor+1:]...)
			if m.cursor >= len(m.sessions) && m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m *HistoryModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.showing = false
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("📜 Conversation History"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(theme.ErrorStyle.Render(formatErrorForDisplay(m.err, 78)))
		b.WriteString("\n\n")
	}

	if m.showing {
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("esc: back • q: quit"))
		return b.String()
	}

	if len(m.sessions) == 0 {
		b.WriteString(theme.MutedStyle.Render("No conversations yet. Start practicing to build your history!"))
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("q: quit"))
		return b.String()
	}

	for i, session := range m.sessions {
		marker := "  "
		if i == m.cursor {
			marker = theme.SubtitleStyle.Render("> ")
		}
		b.WriteString(marker + sessionSummaryLine(session) + "\n")
	}

	b.WriteString(theme.HelpStyle.Render("enter: view • d: delete • q: quit"))
	return b.String()
}

// sessionSummaryLine renders one list row for a session
func sessionSummaryLine(session domain.ConversationSession) string {
	status := theme.MutedStyle.Render("in progress")
	if session.Completed {
		status = theme.ReadyStyle.Render("completed")
	}
	return fmt.Sprintf("%s %s  %s  %s  %s",
		domain.ScenarioEmoji(session.ScenarioID),
		theme.NormalStyle.Render(scenarioDisplayName(session.ScenarioID)),
		theme.TimestampStyle.Render(session.CreatedAt.Local().Format("Jan 02, 2006 15:04")),
		theme.MutedStyle.Render(fmt.Sprintf("%d turns", session.TurnCount)),
		status,
	)
}

// renderSessionDetail renders a full transcript for the detail viewport
func renderSessionDetail(session domain.ConversationSession) string {
	var b strings.Builder
	b.WriteString(theme.SubtitleStyle.Render(domain.ScenarioEmoji(session.ScenarioID) + " " + scenarioDisplayName(session.ScenarioID)))
	b.WriteString(theme.TimestampStyle.Render("  " + session.CreatedAt.Local().Format("Jan 02, 2006 15:04")))
	b.WriteString("\n\n")
	b.WriteString(theme.CoachLabelStyle.Render("🤖 Coach"))
	b.WriteString("\n" + session.OpeningMessage + "\n")

	for _, turn := range session.Turns {
		b.WriteString("\n" + theme.UserLabelStyle.Render("🧑 You"))
		b.WriteString("\n" + turn.UserTranscript + "\n")
		b.WriteString("\n" + theme.CoachLabelStyle.Render("🤖 Coach"))
		b.WriteString("\n" + turn.CoachReply + "\n")
	}

	if session.Completed && session.FinalEvaluation != "" {
		b.WriteString("\n")
		b.WriteString(theme.EvaluationStyle.Render("⚖  Final IELTS Evaluation\n\n" + session.FinalEvaluation))
		b.WriteString("\n")
	}
	return b.String()
}

// scenarioDisplayName turns a scenario id into a readable title when the
// catalog is not available (history is browsable offline).
func scenarioDisplayName(scenarioID string) string {
	words := strings.Split(scenarioID, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
