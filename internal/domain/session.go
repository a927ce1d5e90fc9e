package domain

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one user-utterance/coach-reply exchange. Turns are created only
// from a successful process-turn response and are immutable afterwards.
type Turn struct {
	UserTranscript string    `json:"user"`
	CoachReply     string    `json:"coach"`
	Timestamp      time.Time `json:"timestamp"`
}

// ConversationSession is the persisted record of one practice conversation,
// from start to optional completion.
//
// Invariants, kept by the mutators below:
//   - TurnCount == len(Turns) after every write
//   - FinalEvaluation is non-empty if and only if Completed is true
type ConversationSession struct {
	ID              string
	ScenarioID      string
	CreatedAt       time.Time
	OpeningMessage  string
	Turns           []Turn
	TurnCount       int
	Completed       bool
	FinalEvaluation string
}

// NewConversationSession creates a fresh session for a scenario, with the
// coach opening already obtained, no turns and not completed.
func NewConversationSession(scenarioID, openingMessage string) ConversationSession {
	return ConversationSession{
		ID:             uuid.New().String(),
		ScenarioID:     scenarioID,
		CreatedAt:      time.Now().UTC(),
		OpeningMessage: openingMessage,
	}
}

// AppendTurn adds a turn in conversation order and keeps TurnCount in sync.
func (s *ConversationSession) AppendTurn(turn Turn) {
	s.Turns = append(s.Turns, turn)
	s.TurnCount = len(s.Turns)
}

// Complete marks the session terminal with its final evaluation.
func (s *ConversationSession) Complete(evaluation string) {
	s.Completed = true
	s.FinalEvaluation = evaluation
}

// SessionUpdate carries the fields an update merges into a stored session.
// Nil fields are left untouched.
type SessionUpdate struct {
	Turns           []Turn
	Completed       *bool
	FinalEvaluation *string
}

// Apply merges the update into a session. Turns always replace the stored
// sequence with the freshest known history.
func (u SessionUpdate) Apply(s *ConversationSession) {
	if u.Turns != nil {
		s.Turns = u.Turns
		s.TurnCount = len(u.Turns)
	}
	if u.Completed != nil {
		s.Completed = *u.Completed
	}
	if u.FinalEvaluation != nil {
		s.FinalEvaluation = *u.FinalEvaluation
	}
}

// TurnsUpdate builds an update that replaces the turn history.
func TurnsUpdate(turns []Turn) SessionUpdate {
	return SessionUpdate{Turns: turns}
}

// CompletionUpdate builds an update that records the final evaluation and
// marks the session completed, together with the closing turn history.
func CompletionUpdate(turns []Turn, evaluation string) SessionUpdate {
	completed := true
	return SessionUpdate{
		Turns:           turns,
		Completed:       &completed,
		FinalEvaluation: &evaluation,
	}
}
