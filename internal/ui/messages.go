package ui

import (
	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
)

// Async completion messages for the practice state machine. Requests and
// responses are never pipelined: the phase gating in Model guarantees at
// most one of these is outstanding at any time.
//
// Messages that can arrive after a reset carry the id of the session (or
// the begin attempt) they were issued for; Model drops any message whose id
// no longer matches the live state, so a late response cannot write into a
// session that superseded it.

// scenariosLoadedMsg delivers the scenario catalog fetched at startup
type scenariosLoadedMsg struct {
	scenarios []domain.Scenario
	err       error
}

// conversationStartedMsg delivers the outcome of begin(). attempt ties the
// response to the begin() that issued it.
type conversationStartedMsg struct {
	attempt int
	session *domain.ConversationSession
	err     error
}

// captureStartedMsg delivers the outcome of opening the microphone
type captureStartedMsg struct {
	sessionID string
	err       error
}

// captureStoppedMsg delivers the finalized clip
type captureStoppedMsg struct {
	sessionID string
	clip      domain.AudioClip
	err       error
}

// turnProcessedMsg delivers the outcome of one submitted clip. session is a
// snapshot taken after the turn was appended and persisted.
type turnProcessedMsg struct {
	sessionID string
	session   domain.ConversationSession
	result    *ports.TurnResult
	err       error
}

// evaluationReadyMsg delivers the final evaluation outcome
type evaluationReadyMsg struct {
	sessionID string
	session   domain.ConversationSession
	err       error
}
