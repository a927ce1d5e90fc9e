package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
	"github.com/Kanompung1988/ASR-NANO/internal/services"
)

// phase is the explicit state of the conversation state machine. Exactly one
// phase is live at a time; every user action and every async completion is
// interpreted against it, which makes combinations like "submitting without
// a session" unrepresentable.
type phase int

const (
	phaseIdle phase = iota
	phaseStarting
	phaseActive
	phaseCapturing
	phaseClipReady
	phaseSubmitting
	phaseCompleting
	phaseCompleted
)

// KeyMap defines the practice screen key bindings
type KeyMap struct {
	Confirm key.Binding
	Discard key.Binding
	Record  key.Binding
	Reset   key.Binding
	Stop    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(key.WithKeys("enter")),
		Discard: key.NewBinding(key.WithKeys("d")),
		Record:  key.NewBinding(key.WithKeys("r")),
		Reset:   key.NewBinding(key.WithKeys("n", "esc")),
		Stop:    key.NewBinding(key.WithKeys("s", " ")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}

// Model is the practice conversation screen: the state machine that drives
// scenario selection, the record/submit turn loop, completion and session
// bookkeeping. It runs entirely on the bubbletea program goroutine; the only
// concurrency is the interleaving of key events and tea.Cmd completions,
// and the phase gating keeps at most one network call in flight.
type Model struct {
	conversation *services.ConversationService
	recorder     ports.Recorder

	phase     phase
	attempt   int // invalidates stale begin() responses after reset
	scenarios []domain.Scenario
	session   *domain.ConversationSession
	clip      domain.AudioClip
	err       error

	scenarioID   string
	scenarioForm *huh.Form

	keys       KeyMap
	spinner    spinner.Model
	stopwatch  stopwatch.Model
	transcript viewport.Model
	stopping   bool // a Stop() is already in flight for this capture
	width      int
	height     int
	quitting   bool
}

// NewModel creates the practice screen model.
func NewModel(conversation *services.ConversationService, recorder ports.Recorder) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Model{
		conversation: conversation,
		recorder:     recorder,
		phase:        phaseIdle,
		scenarioID:   domain.DefaultScenarioID,
		keys:         DefaultKeyMap(),
		spinner:      s,
		stopwatch:    stopwatch.NewWithInterval(time.Second),
		transcript:   viewport.New(80, 16),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadScenariosCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = msg.Width - 4
		if msg.Height > 14 {
			m.transcript.Height = msg.Height - 12
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stopwatch.TickMsg, stopwatch.StartStopMsg, stopwatch.ResetMsg:
		var cmd tea.Cmd
		m.stopwatch, cmd = m.stopwatch.Update(msg)
		return m, cmd

	case scenariosLoadedMsg:
		return m.applyScenariosLoaded(msg)

	case conversationStartedMsg:
		return m.applyConversationStarted(msg)

	case captureStartedMsg:
		return m.applyCaptureStarted(msg)

	case captureStoppedMsg:
		return m.applyCaptureStopped(msg)

	case turnProcessedMsg:
		return m.applyTurnProcessed(msg)

	case evaluationReadyMsg:
		return m.applyEvaluationReady(msg)
	}

	switch m.phase {
	case phaseIdle:
		return m.updateIdle(msg)
	case phaseStarting, phaseSubmitting:
		return m.updateBusy(msg)
	case phaseActive:
		return m.updateActive(msg)
	case phaseCapturing:
		return m.updateCapturing(msg)
	case phaseClipReady:
		return m.updateClipReady(msg)
	case phaseCompleting:
		return m.updateCompleting(msg)
	case phaseCompleted:
		return m.updateCompleted(msg)
	}
	return m, nil
}

// --- per-phase key handling ---

func (m *Model) updateIdle(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Quit) {
		return m.quit()
	}

	// Catalog failed to load: r retries
	if m.scenarios == nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Record) {
			m.err = nil
			return m, m.loadScenariosCmd()
		}
		return m, nil
	}

	// Scenario selection form is open
	if m.scenarioForm != nil {
		form, cmd := m.scenarioForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.scenarioForm = f
		}
		if m.scenarioForm.State == huh.StateCompleted {
			m.scenarioForm = nil
		}
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Confirm):
			return m.begin()
		case key.Matches(keyMsg, m.keys.Stop):
			m.openScenarioForm()
			return m, m.scenarioForm.Init()
		}
	}
	return m, nil
}

// updateBusy covers Starting and Submitting: a network call is in flight
// and no new work may be issued.
func (m *Model) updateBusy(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m.quit()
		case key.Matches(keyMsg, m.keys.Reset):
			// The in-flight response is discarded against the new attempt
			return m.reset()
		}
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m.quit()
		case key.Matches(keyMsg, m.keys.Record):
			m.err = nil
			return m, m.startCaptureCmd()
		case key.Matches(keyMsg, m.keys.Reset):
			return m.reset()
		}
	}

	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	return m, cmd
}

func (m *Model) updateCapturing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m.quit()
		case key.Matches(keyMsg, m.keys.Stop), key.Matches(keyMsg, m.keys.Confirm):
			if m.stopping {
				return m, nil
			}
			m.stopping = true
			return m, m.stopCaptureCmd()
		case key.Matches(keyMsg, m.keys.Reset):
			return m.reset()
		}
	}
	return m, nil
}

func (m *Model) updateClipReady(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m.quit()
		case key.Matches(keyMsg, m.keys.Confirm), key.Matches(keyMsg, m.keys.Stop):
			return m.submit()
		case key.Matches(keyMsg, m.keys.Discard):
			// Dropping the clip has no network or storage effect
			m.clip = domain.AudioClip{}
			m.err = nil
			m.phase = phaseActive
			return m, nil
		case key.Matches(keyMsg, m.keys.Reset):
			return m.reset()
		}
	}
	return m, nil
}

func (m *Model) updateCompleting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m.quit()
		case key.Matches(keyMsg, m.keys.Confirm):
			// Retry the failed evaluation request; the turns are already
			// durable, so nothing is lost by retrying
			if m.err != nil {
				m.err = nil
				return m, m.finalizeCmd()
			}
		case key.Matches(keyMsg, m.keys.Reset):
			return m.reset()
		}
	}
	return m, nil
}

func (m *Model) updateCompleted(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m.quit()
		case key.Matches(keyMsg, m.keys.Reset), key.Matches(keyMsg, m.keys.Confirm):
			return m.reset()
		}
	}

	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	return m, cmd
}

// --- transitions ---

// begin starts a conversation for the selected scenario: Idle -> Starting.
func (m *Model) begin() (tea.Model, tea.Cmd) {
	m.err = nil
	m.phase = phaseStarting
	m.attempt++

	attempt := m.attempt
	scenarioID := m.scenarioID
	conversation := m.conversation
	return m, func() tea.Msg {
		session, err := conversation.Begin(context.Background(), scenarioID)
		return conversationStartedMsg{attempt: attempt, session: session, err: err}
	}
}

// submit sends the held clip with the full history: ClipReady -> Submitting.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	m.err = nil
	m.phase = phaseSubmitting

	// Work on a snapshot so the in-flight call never shares memory with
	// what the UI is rendering
	session := m.snapshotSession()
	clip := m.clip
	conversation := m.conversation
	return m, func() tea.Msg {
		result, err := conversation.SubmitTurn(context.Background(), &session, clip)
		return turnProcessedMsg{sessionID: session.ID, session: session, result: result, err: err}
	}
}

// reset discards the in-memory conversation and returns to Idle. The
// persisted session is untouched and stays browsable in history.
func (m *Model) reset() (tea.Model, tea.Cmd) {
	if m.recorder.Recording() {
		// Release the device; the clip is deliberately discarded
		if _, err := m.recorder.Stop(); err != nil {
			logging.Logger.Warn("Failed to stop capture during reset", "error", err)
		}
	}

	m.attempt++ // invalidates any in-flight begin() response
	m.session = nil
	m.clip = domain.AudioClip{}
	m.err = nil
	m.stopping = false
	m.phase = phaseIdle

	var cmd tea.Cmd
	if m.scenarios != nil {
		m.openScenarioForm()
		cmd = m.scenarioForm.Init()
	}
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.recorder.Recording() {
		if _, err := m.recorder.Stop(); err != nil {
			logging.Logger.Warn("Failed to stop capture on quit", "error", err)
		}
	}
	m.quitting = true
	return m, tea.Quit
}

// --- async completion handling ---

func (m *Model) applyScenariosLoaded(msg scenariosLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.scenarios = msg.scenarios
	if m.phase != phaseIdle || m.scenarioForm != nil {
		return m, nil
	}
	m.openScenarioForm()
	return m, m.scenarioForm.Init()
}

func (m *Model) applyConversationStarted(msg conversationStartedMsg) (tea.Model, tea.Cmd) {
	if msg.attempt != m.attempt || m.phase != phaseStarting {
		logging.Logger.Debug("Dropping stale conversation start", "attempt", msg.attempt)
		return m, nil
	}

	if msg.err != nil {
		m.err = msg.err
		m.phase = phaseIdle
		return m, nil
	}

	m.session = msg.session
	m.phase = phaseActive
	m.refreshTranscript()
	return m, nil
}

func (m *Model) applyCaptureStarted(msg captureStartedMsg) (tea.Model, tea.Cmd) {
	if !m.sameSession(msg.sessionID) || m.phase != phaseActive {
		return m, nil
	}

	if msg.err != nil {
		// No recording state was entered and the session is untouched
		m.err = msg.err
		return m, nil
	}

	m.phase = phaseCapturing
	m.stopping = false
	return m, tea.Batch(m.stopwatch.Reset(), m.stopwatch.Start())
}

func (m *Model) applyCaptureStopped(msg captureStoppedMsg) (tea.Model, tea.Cmd) {
	stopCmd := m.stopwatch.Stop()
	if !m.sameSession(msg.sessionID) || m.phase != phaseCapturing {
		return m, stopCmd
	}

	m.stopping = false
	if msg.err != nil {
		m.err = msg.err
		m.phase = phaseActive
		return m, stopCmd
	}

	m.clip = msg.clip
	m.phase = phaseClipReady
	return m, stopCmd
}

func (m *Model) applyTurnProcessed(msg turnProcessedMsg) (tea.Model, tea.Cmd) {
	if !m.sameSession(msg.sessionID) || m.phase != phaseSubmitting {
		logging.Logger.Debug("Dropping stale turn response", "session_id", msg.sessionID)
		return m, nil
	}

	if msg.err != nil {
		// The clip is preserved so the user can retry without re-recording
		m.err = msg.err
		m.phase = phaseClipReady
		return m, nil
	}

	session := msg.session
	m.session = &session
	m.clip = domain.AudioClip{}
	m.refreshTranscript()

	if msg.result.IsComplete {
		m.phase = phaseCompleting
		return m, m.finalizeCmd()
	}
	m.phase = phaseActive
	return m, nil
}

func (m *Model) applyEvaluationReady(msg evaluationReadyMsg) (tea.Model, tea.Cmd) {
	if !m.sameSession(msg.sessionID) || m.phase != phaseCompleting {
		logging.Logger.Debug("Dropping stale evaluation response", "session_id", msg.sessionID)
		return m, nil
	}

	if msg.err != nil {
		// Turn data is already durable; only the evaluation is missing
		m.err = msg.err
		return m, nil
	}

	session := msg.session
	m.session = &session
	m.phase = phaseCompleted
	m.refreshTranscript()
	return m, nil
}

// --- commands ---

func (m *Model) loadScenariosCmd() tea.Cmd {
	conversation := m.conversation
	return func() tea.Msg {
		scenarios, err := conversation.Scenarios(context.Background())
		return scenariosLoadedMsg{scenarios: scenarios, err: err}
	}
}

func (m *Model) startCaptureCmd() tea.Cmd {
	sessionID := m.session.ID
	recorder := m.recorder
	return func() tea.Msg {
		err := recorder.Start(context.Background())
		return captureStartedMsg{sessionID: sessionID, err: err}
	}
}

func (m *Model) stopCaptureCmd() tea.Cmd {
	sessionID := m.session.ID
	recorder := m.recorder
	return func() tea.Msg {
		clip, err := recorder.Stop()
		return captureStoppedMsg{sessionID: sessionID, clip: clip, err: err}
	}
}

func (m *Model) finalizeCmd() tea.Cmd {
	session := m.snapshotSession()
	conversation := m.conversation
	return func() tea.Msg {
		if _, err := conversation.Finalize(context.Background(), &session); err != nil {
			return evaluationReadyMsg{sessionID: session.ID, err: err}
		}
		return evaluationReadyMsg{sessionID: session.ID, session: session}
	}
}

// --- helpers ---

// snapshotSession deep-copies the live session for use off the UI goroutine
func (m *Model) snapshotSession() domain.ConversationSession {
	session := *m.session
	session.Turns = append([]domain.Turn(nil), m.session.Turns...)
	return session
}

// sameSession reports whether an async response still belongs to the live
// session; responses for reset or superseded sessions are dropped.
func (m *Model) sameSession(sessionID string) bool {
	return m.session != nil && m.session.ID == sessionID
}

func (m *Model) openScenarioForm() {
	options := make([]huh.Option[string], 0, len(m.scenarios))
	for _, s := range m.scenarios {
		options = append(options, huh.NewOption(domain.ScenarioEmoji(s.ID)+" "+s.Title, s.ID))
	}

	m.scenarioForm = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Choose your scenario").
			Options(options...).
			Value(&m.scenarioID),
	))
}

// selectedScenario returns the catalog entry for the chosen scenario id
func (m *Model) selectedScenario() *domain.Scenario {
	for i := range m.scenarios {
		if m.scenarios[i].ID == m.scenarioID {
			return &m.scenarios[i]
		}
	}
	return nil
}
