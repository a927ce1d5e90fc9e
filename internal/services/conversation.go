package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
)

// ConversationService sequences the coach calls and the session writes for
// one practice conversation. The ordering contract lives here: a turn is
// durably persisted before its result is handed back, so a completion seen
// by the caller always has its turn data already on disk when the final
// evaluation is requested.
type ConversationService struct {
	coach ports.CoachClient
	store ports.SessionStore
}

// NewConversationService creates a new ConversationService
func NewConversationService(coach ports.CoachClient, store ports.SessionStore) *ConversationService {
	return &ConversationService{coach: coach, store: store}
}

// Scenarios fetches the scenario catalog.
func (s *ConversationService) Scenarios(ctx context.Context) ([]domain.Scenario, error) {
	return s.coach.ListScenarios(ctx)
}

// Begin starts a conversation for a scenario and appends the new session to
// the store, making it current.
func (s *ConversationService) Begin(ctx context.Context, scenarioID string) (*domain.ConversationSession, error) {
	opening, err := s.coach.StartConversation(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	session := domain.NewConversationSession(scenarioID, opening)
	if err := s.store.Append(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}

	logging.Logger.Info("Conversation began",
		"session_id", session.ID,
		"scenario_id", scenarioID)
	return &session, nil
}

// SubmitTurn sends a clip plus the full prior history to the coach, appends
// the resulting turn to the session and persists it. On any failure the
// session is left exactly as it was, so the caller can retry with the same
// clip.
func (s *ConversationService) SubmitTurn(ctx context.Context, session *domain.ConversationSession, clip domain.AudioClip) (*ports.TurnResult, error) {
	result, err := s.coach.ProcessTurn(ctx, session.ScenarioID, clip, session.Turns)
	if err != nil {
		return nil, err
	}

	session.AppendTurn(domain.Turn{
		UserTranscript: result.Transcript,
		CoachReply:     result.CoachReply,
		Timestamp:      time.Now().UTC(),
	})

	if err := s.store.Update(ctx, session.ID, domain.TurnsUpdate(session.Turns)); err != nil {
		// Undo the in-memory append so a retry submits the same turn once
		session.Turns = session.Turns[:len(session.Turns)-1]
		session.TurnCount = len(session.Turns)
		return nil, fmt.Errorf("failed to persist turn: %w", err)
	}

	logging.Logger.Debug("Turn recorded",
		"session_id", session.ID,
		"turn_count", session.TurnCount,
		"is_complete", result.IsComplete)
	return result, nil
}

// Finalize requests the final evaluation for a session whose completing turn
// is already persisted, then marks the session terminal. On failure the
// session keeps its turns and stays incomplete; nothing already persisted is
// rolled back.
func (s *ConversationService) Finalize(ctx context.Context, session *domain.ConversationSession) (string, error) {
	evaluation, err := s.coach.FinalEvaluation(ctx, session.Turns)
	if err != nil {
		return "", err
	}

	if err := s.store.Update(ctx, session.ID, domain.CompletionUpdate(session.Turns, evaluation)); err != nil {
		return "", fmt.Errorf("failed to persist evaluation: %w", err)
	}
	session.Complete(evaluation)

	logging.Logger.Info("Conversation completed",
		"session_id", session.ID,
		"turn_count", session.TurnCount)
	return evaluation, nil
}
