package ports

import (
	"context"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

// TurnResult is the backend's answer to one submitted recording.
type TurnResult struct {
	Transcript string
	CoachReply string
	IsComplete bool
}

// CoachClient talks to the remote coach backend. The backend is stateless
// across calls: ProcessTurn and FinalEvaluation are always given the full
// prior history. Every call can fail with *domain.NetworkError (unreachable)
// or *domain.ServerError (non-success status); both are user-retryable.
type CoachClient interface {
	ListScenarios(ctx context.Context) ([]domain.Scenario, error)
	StartConversation(ctx context.Context, scenarioID string) (openingMessage string, err error)
	ProcessTurn(ctx context.Context, scenarioID string, clip domain.AudioClip, history []domain.Turn) (*TurnResult, error)
	FinalEvaluation(ctx context.Context, history []domain.Turn) (evaluation string, err error)
}
