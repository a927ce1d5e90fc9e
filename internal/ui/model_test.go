package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
	"github.com/Kanompung1988/ASR-NANO/internal/services"
)

// stubCoach implements ports.CoachClient for driving the state machine.
type stubCoach struct {
	scenarios   []domain.Scenario
	opening     string
	turnResults []*ports.TurnResult
	evaluation  string

	processErr error
	finalErr   error

	processCalls  int
	evaluateCalls int
}

func (s *stubCoach) ListScenarios(ctx context.Context) ([]domain.Scenario, error) {
	return s.scenarios, nil
}

func (s *stubCoach) StartConversation(ctx context.Context, scenarioID string) (string, error) {
	return s.opening, nil
}

func (s *stubCoach) ProcessTurn(ctx context.Context, scenarioID string, clip domain.AudioClip, history []domain.Turn) (*ports.TurnResult, error) {
	s.processCalls++
	if s.processErr != nil {
		return nil, s.processErr
	}
	result := s.turnResults[0]
	if len(s.turnResults) > 1 {
		s.turnResults = s.turnResults[1:]
	}
	return result, nil
}

func (s *stubCoach) FinalEvaluation(ctx context.Context, history []domain.Turn) (string, error) {
	s.evaluateCalls++
	if s.finalErr != nil {
		return "", s.finalErr
	}
	return s.evaluation, nil
}

// stubStore implements ports.SessionStore in memory.
type stubStore struct {
	appended []domain.ConversationSession
	updates  int
}

func (s *stubStore) Append(ctx context.Context, session domain.ConversationSession) error {
	s.appended = append(s.appended, session)
	return nil
}

func (s *stubStore) Update(ctx context.Context, sessionID string, update domain.SessionUpdate) error {
	s.updates++
	for i := range s.appended {
		if s.appended[i].ID == sessionID {
			update.Apply(&s.appended[i])
		}
	}
	return nil
}

func (s *stubStore) ListAll(ctx context.Context) ([]domain.ConversationSession, error) {
	return s.appended, nil
}

func (s *stubStore) Current(ctx context.Context) (*domain.ConversationSession, error) {
	if len(s.appended) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return &s.appended[len(s.appended)-1], nil
}

func (s *stubStore) Remove(ctx context.Context, sessionID string) error { return nil }
func (s *stubStore) Clear(ctx context.Context) error                    { return nil }
func (s *stubStore) Close() error                                       { return nil }

func (s *stubStore) stored(t *testing.T, id string) domain.ConversationSession {
	t.Helper()
	for _, session := range s.appended {
		if session.ID == id {
			return session
		}
	}
	t.Fatalf("session %s not stored", id)
	return domain.ConversationSession{}
}

// stubRecorder implements ports.Recorder without touching any device.
type stubRecorder struct {
	recording bool
	clip      domain.AudioClip
	startErr  error

	starts int
	stops  int
}

func (r *stubRecorder) Start(ctx context.Context) error {
	r.starts++
	if r.startErr != nil {
		return r.startErr
	}
	if r.recording {
		return domain.ErrCaptureActive
	}
	r.recording = true
	return nil
}

func (r *stubRecorder) Stop() (domain.AudioClip, error) {
	r.stops++
	if !r.recording {
		return domain.AudioClip{}, nil
	}
	r.recording = false
	return r.clip, nil
}

func (r *stubRecorder) Recording() bool { return r.recording }

func newTestModel(coach *stubCoach, store *stubStore, recorder *stubRecorder) *Model {
	m := NewModel(services.NewConversationService(coach, store), recorder)
	m.scenarios = coach.scenarios
	return m
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

// step feeds the message produced by cmd back into the model, the way the
// bubbletea runtime would.
func step(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	return next
}

// beginSession drives the model from Idle into Active.
func beginSession(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(enterKey)
	step(t, m, cmd)
	require.Equal(t, phaseActive, m.phase)
	require.NotNil(t, m.session)
}

// recordClip drives one record/stop cycle into ClipReady.
func recordClip(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(keyPress('r'))
	m.Update(cmd()) // captureStartedMsg
	require.Equal(t, phaseCapturing, m.phase)

	_, cmd = m.Update(keyPress('s'))
	m.Update(cmd()) // captureStoppedMsg
	require.Equal(t, phaseClipReady, m.phase)
}

func defaultCoach() *stubCoach {
	return &stubCoach{
		scenarios: []domain.Scenario{
			{ID: "free", Title: "Free Talk"},
			{ID: "restaurant", Title: "At the Restaurant", Goal: "Order a meal"},
		},
		opening:     "Hello! Ready to practice?",
		turnResults: []*ports.TurnResult{{Transcript: "hi", CoachReply: "hello"}},
		evaluation:  "Band 7.0",
	}
}

func TestModel_FullConversationFlow(t *testing.T) {
	coach := defaultCoach()
	coach.turnResults = []*ports.TurnResult{
		{Transcript: "a table for four", CoachReply: "right this way"},
		{Transcript: "thank you, goodbye", CoachReply: "goodbye!", IsComplete: true},
	}
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav"), MIME: "audio/wav"}}
	m := newTestModel(coach, store, recorder)
	m.scenarioID = "restaurant"

	beginSession(t, m)
	sessionID := m.session.ID
	assert.Equal(t, "restaurant", m.session.ScenarioID)
	assert.Equal(t, "Hello! Ready to practice?", m.session.OpeningMessage)

	// First turn
	recordClip(t, m)
	_, cmd := m.Update(enterKey)
	require.Equal(t, phaseSubmitting, m.phase)
	cmd = step(t, m, cmd) // turnProcessedMsg
	require.Equal(t, phaseActive, m.phase)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.session.TurnCount)
	assert.True(t, m.clip.Empty())

	// Second turn completes the conversation
	recordClip(t, m)
	_, cmd = m.Update(enterKey)
	cmd = step(t, m, cmd) // turnProcessedMsg, IsComplete
	require.Equal(t, phaseCompleting, m.phase)
	step(t, m, cmd) // evaluationReadyMsg
	require.Equal(t, phaseCompleted, m.phase)

	assert.True(t, m.session.Completed)
	assert.Equal(t, "Band 7.0", m.session.FinalEvaluation)
	assert.Equal(t, 1, coach.evaluateCalls)

	stored := store.stored(t, sessionID)
	assert.Equal(t, 2, stored.TurnCount)
	assert.True(t, stored.Completed)
	assert.Equal(t, "Band 7.0", stored.FinalEvaluation)
}

func TestModel_EachSubmitAppendsOneTurn(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)

	const turns = 4
	for i := 0; i < turns; i++ {
		recordClip(t, m)
		_, cmd := m.Update(enterKey)
		step(t, m, cmd)
		require.Equal(t, phaseActive, m.phase)
	}

	assert.Equal(t, turns, m.session.TurnCount)
	assert.Equal(t, turns, store.stored(t, m.session.ID).TurnCount)
}

func TestModel_DiscardLeavesNoTrace(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	updatesBefore := store.updates

	recordClip(t, m)
	require.False(t, m.clip.Empty())

	m.Update(keyPress('d'))

	assert.Equal(t, phaseActive, m.phase)
	assert.True(t, m.clip.Empty())
	assert.Zero(t, m.session.TurnCount)
	assert.Equal(t, updatesBefore, store.updates)
	assert.Zero(t, coach.processCalls)
}

func TestModel_MicDenied_StaysActiveWithoutMutation(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	recorder := &stubRecorder{startErr: domain.ErrDeviceUnavailable}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	updatesBefore := store.updates

	_, cmd := m.Update(keyPress('r'))
	m.Update(cmd())

	assert.Equal(t, phaseActive, m.phase)
	assert.ErrorIs(t, m.err, domain.ErrDeviceUnavailable)
	assert.Zero(t, m.session.TurnCount)
	assert.Equal(t, updatesBefore, store.updates)
}

func TestModel_SubmitFailure_KeepsClipForRetry(t *testing.T) {
	coach := defaultCoach()
	coach.processErr = &domain.ServerError{Status: 500, Detail: "whisper crashed"}
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("take-one")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	recordClip(t, m)

	_, cmd := m.Update(enterKey)
	step(t, m, cmd)

	require.Equal(t, phaseClipReady, m.phase)
	require.Error(t, m.err)
	assert.Equal(t, []byte("take-one"), m.clip.Data)
	assert.Zero(t, m.session.TurnCount)

	// Retry with the same clip succeeds and appends exactly one turn
	coach.processErr = nil
	_, cmd = m.Update(enterKey)
	step(t, m, cmd)

	assert.Equal(t, phaseActive, m.phase)
	assert.Equal(t, 1, m.session.TurnCount)
	assert.Equal(t, 2, coach.processCalls)
}

func TestModel_EvaluationFailure_RetriesWithoutNewTurn(t *testing.T) {
	coach := defaultCoach()
	coach.turnResults = []*ports.TurnResult{{Transcript: "bye", CoachReply: "goodbye", IsComplete: true}}
	coach.finalErr = &domain.NetworkError{Err: errors.New("timeout")}
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	recordClip(t, m)

	_, cmd := m.Update(enterKey)
	cmd = step(t, m, cmd) // turnProcessedMsg triggers finalize
	require.Equal(t, phaseCompleting, m.phase)
	step(t, m, cmd) // evaluationReadyMsg with error

	require.Equal(t, phaseCompleting, m.phase)
	require.Error(t, m.err)
	// The completing turn is already durable
	assert.Equal(t, 1, store.stored(t, m.session.ID).TurnCount)

	// Enter retries just the evaluation
	coach.finalErr = nil
	_, cmd = m.Update(enterKey)
	step(t, m, cmd)

	assert.Equal(t, phaseCompleted, m.phase)
	assert.Equal(t, 1, m.session.TurnCount)
	assert.Equal(t, 2, coach.evaluateCalls)
	assert.Equal(t, 1, coach.processCalls)
}

func TestModel_CompletedSessionIsTerminal(t *testing.T) {
	coach := defaultCoach()
	coach.turnResults = []*ports.TurnResult{{Transcript: "bye", CoachReply: "goodbye", IsComplete: true}}
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	recordClip(t, m)
	_, cmd := m.Update(enterKey)
	cmd = step(t, m, cmd)
	step(t, m, cmd)
	require.Equal(t, phaseCompleted, m.phase)

	// Record key does nothing on a completed session
	_, cmd = m.Update(keyPress('r'))
	assert.Zero(t, recorder.starts)
	assert.Equal(t, phaseCompleted, m.phase)
}

func TestModel_StaleBeginResponseDropped(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	m := newTestModel(coach, store, &stubRecorder{})

	// Start, then reset before the response arrives
	m.Update(enterKey)
	require.Equal(t, phaseStarting, m.phase)
	staleAttempt := m.attempt

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, phaseIdle, m.phase)

	stale := domain.NewConversationSession("free", "late")
	m.Update(conversationStartedMsg{attempt: staleAttempt, session: &stale})

	assert.Equal(t, phaseIdle, m.phase)
	assert.Nil(t, m.session)
}

func TestModel_StaleTurnResponseDropped(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	oldID := m.session.ID

	// A response for a session that was since reset and replaced
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.scenarioForm = nil
	beginSession(t, m)
	require.NotEqual(t, oldID, m.session.ID)

	staleSnapshot := domain.NewConversationSession("free", "stale")
	m.Update(turnProcessedMsg{
		sessionID: oldID,
		session:   staleSnapshot,
		result:    &ports.TurnResult{Transcript: "late", CoachReply: "late"},
	})

	assert.Equal(t, phaseActive, m.phase)
	assert.Zero(t, m.session.TurnCount)
}

func TestModel_ResetReleasesActiveCapture(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	_, cmd := m.Update(keyPress('r'))
	m.Update(cmd())
	require.Equal(t, phaseCapturing, m.phase)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, phaseIdle, m.phase)
	assert.False(t, recorder.Recording())
	assert.True(t, m.clip.Empty())
}

func TestModel_SecondStopKeyIgnoredWhileStopping(t *testing.T) {
	coach := defaultCoach()
	store := &stubStore{}
	recorder := &stubRecorder{clip: domain.AudioClip{Data: []byte("wav")}}
	m := newTestModel(coach, store, recorder)

	beginSession(t, m)
	_, cmd := m.Update(keyPress('r'))
	m.Update(cmd())
	require.Equal(t, phaseCapturing, m.phase)

	_, stopCmd := m.Update(keyPress('s'))
	require.NotNil(t, stopCmd)

	_, second := m.Update(keyPress('s'))
	assert.Nil(t, second)

	m.Update(stopCmd())
	assert.Equal(t, phaseClipReady, m.phase)
	assert.Equal(t, 1, recorder.stops)
}
