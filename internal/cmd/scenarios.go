package cmd

import (
	"context"
	"fmt"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

// ScenariosCmd lists the practice scenarios offered by the coach backend
type ScenariosCmd struct{}

func (s *ScenariosCmd) Run(cli *CLI) error {
	scenarios, err := cli.Container.Coach.ListScenarios(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load scenarios: %w", err)
	}

	for _, scenario := range scenarios {
		fmt.Printf("%s %s (%s)\n", domain.ScenarioEmoji(scenario.ID), scenario.Title, scenario.ID)
		if scenario.Goal != "" {
			fmt.Printf("   Goal: %s\n", scenario.Goal)
		}
		for i, step := range scenario.Steps {
			fmt.Printf("   %d. %s\n", i+1, step)
		}
		fmt.Println()
	}
	return nil
}
