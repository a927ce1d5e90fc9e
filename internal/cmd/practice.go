package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kanompung1988/ASR-NANO/internal/ui"
)

// PracticeCmd starts an interactive practice conversation
type PracticeCmd struct{}

func (p *PracticeCmd) Run(cli *CLI) error {
	model := ui.NewModel(cli.Container.Conversation, cli.Container.Recorder)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run practice session: %w", err)
	}
	return nil
}
