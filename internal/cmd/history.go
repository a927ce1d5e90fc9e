package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/ui"
)

// HistoryCmd groups the conversation history subcommands
type HistoryCmd struct {
	List  HistoryListCmd  `cmd:"list" help:"Browse past conversations interactively (default)" default:"1"`
	View  HistoryViewCmd  `cmd:"view" help:"Print the transcript of a past conversation"`
	Del   HistoryDelCmd   `cmd:"del" help:"Delete a past conversation"`
	Clear HistoryClearCmd `cmd:"clear" help:"Delete every past conversation"`
}

// HistoryListCmd opens the interactive history browser
type HistoryListCmd struct{}

func (h *HistoryListCmd) Run(cli *CLI) error {
	model := ui.NewHistoryModel(cli.Container.History)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history browser: %w", err)
	}
	return nil
}

// HistoryViewCmd prints a stored transcript to stdout
type HistoryViewCmd struct {
	ID string `arg:"" help:"Session identifier (see 'history list')"`
}

func (h *HistoryViewCmd) Run(cli *CLI) error {
	session, err := cli.Container.History.Get(context.Background(), h.ID)
	if err != nil {
		return err
	}

	scenario := domain.ScenarioEmoji(session.ScenarioID) + " " + session.ScenarioID
	fmt.Printf("%s  %s  (%d turns)\n\n", scenario, session.CreatedAt.Format("2006-01-02 15:04"), session.TurnCount)
	if session.OpeningMessage != "" {
		fmt.Printf("Coach: %s\n\n", session.OpeningMessage)
	}
	for _, turn := range session.Turns {
		fmt.Printf("You:   %s\n", turn.UserTranscript)
		fmt.Printf("Coach: %s\n\n", turn.CoachReply)
	}
	if session.Completed && session.FinalEvaluation != "" {
		fmt.Printf("--- Evaluation ---\n%s\n", session.FinalEvaluation)
	}
	return nil
}

// HistoryDelCmd deletes a single stored conversation
type HistoryDelCmd struct {
	ID string `arg:"" help:"Session identifier (see 'history list')"`
}

func (h *HistoryDelCmd) Run(cli *CLI) error {
	if err := cli.Container.History.Delete(context.Background(), h.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", h.ID)
	return nil
}

// HistoryClearCmd deletes every stored conversation
type HistoryClearCmd struct {
	Force bool `help:"Skip the confirmation prompt" short:"f"`
}

func (h *HistoryClearCmd) Run(cli *CLI) error {
	if !h.Force {
		fmt.Print("Delete ALL stored conversations? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}
	if err := cli.Container.History.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Println("History cleared")
	return nil
}
