package storage

import (
	"encoding/json"
	"fmt"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

// sessionModelToDomain converts a ConversationSessionModel (GORM) to
// domain.ConversationSession
func sessionModelToDomain(m ConversationSessionModel) (domain.ConversationSession, error) {
	var turns []domain.Turn
	if m.Turns != "" {
		if err := json.Unmarshal([]byte(m.Turns), &turns); err != nil {
			return domain.ConversationSession{}, fmt.Errorf("failed to decode turns for session %s: %w", m.ID, err)
		}
	}

	return domain.ConversationSession{
		ID:              m.ID,
		ScenarioID:      m.ScenarioID,
		CreatedAt:       m.CreatedAt,
		OpeningMessage:  m.OpeningMessage,
		Turns:           turns,
		TurnCount:       m.TurnCount,
		Completed:       m.Completed,
		FinalEvaluation: m.FinalEvaluation,
	}, nil
}

// domainToSessionModel converts a domain.ConversationSession to
// ConversationSessionModel (GORM)
func domainToSessionModel(s domain.ConversationSession) (ConversationSessionModel, error) {
	turns := s.Turns
	if turns == nil {
		turns = []domain.Turn{}
	}
	encoded, err := json.Marshal(turns)
	if err != nil {
		return ConversationSessionModel{}, fmt.Errorf("failed to encode turns for session %s: %w", s.ID, err)
	}

	return ConversationSessionModel{
		ID:              s.ID,
		ScenarioID:      s.ScenarioID,
		CreatedAt:       s.CreatedAt,
		OpeningMessage:  s.OpeningMessage,
		Turns:           string(encoded),
		TurnCount:       s.TurnCount,
		Completed:       s.Completed,
		FinalEvaluation: s.FinalEvaluation,
	}, nil
}

// encodeCurrent serializes a session for the current-session record
func encodeCurrent(s domain.ConversationSession) (string, error) {
	data, err := json.Marshal(currentPayloadFromDomain(s))
	if err != nil {
		return "", fmt.Errorf("failed to encode current session: %w", err)
	}
	return string(data), nil
}

// decodeCurrent deserializes the current-session record
func decodeCurrent(data string) (domain.ConversationSession, error) {
	var payload currentPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return domain.ConversationSession{}, fmt.Errorf("failed to decode current session: %w", err)
	}
	return payload.toDomain(), nil
}

// currentPayload is the JSON shape of the current-session record
type currentPayload struct {
	ID              string        `json:"id"`
	ScenarioID      string        `json:"scenario_id"`
	CreatedAt       string        `json:"created_at"`
	OpeningMessage  string        `json:"opening"`
	Turns           []domain.Turn `json:"conversation"`
	TurnCount       int           `json:"turns"`
	Completed       bool          `json:"completed"`
	FinalEvaluation string        `json:"final_evaluation,omitempty"`
}

func currentPayloadFromDomain(s domain.ConversationSession) currentPayload {
	turns := s.Turns
	if turns == nil {
		turns = []domain.Turn{}
	}
	return currentPayload{
		ID:              s.ID,
		ScenarioID:      s.ScenarioID,
		CreatedAt:       s.CreatedAt.Format(timeLayout),
		OpeningMessage:  s.OpeningMessage,
		Turns:           turns,
		TurnCount:       s.TurnCount,
		Completed:       s.Completed,
		FinalEvaluation: s.FinalEvaluation,
	}
}

func (p currentPayload) toDomain() domain.ConversationSession {
	return domain.ConversationSession{
		ID:              p.ID,
		ScenarioID:      p.ScenarioID,
		CreatedAt:       parseTime(p.CreatedAt),
		OpeningMessage:  p.OpeningMessage,
		Turns:           p.Turns,
		TurnCount:       p.TurnCount,
		Completed:       p.Completed,
		FinalEvaluation: p.FinalEvaluation,
	}
}
