package server

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"github.com/Kanompung1988/ASR-NANO/internal/adapters/storage"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/services"
	"github.com/Kanompung1988/ASR-NANO/internal/ui"
)

// sessionModel wraps ui.HistoryModel to close the per-connection store when
// the remote user quits.
type sessionModel struct {
	*ui.HistoryModel
	connID    string
	startTime time.Time
	store     *storage.SQLiteStore
}

func (s *sessionModel) Init() tea.Cmd {
	return s.HistoryModel.Init()
}

func (s *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.QuitMsg); ok {
		duration := time.Since(s.startTime)

		if err := s.store.Close(); err != nil {
			logging.Logger.Error("Failed to close store for SSH session",
				"error", err,
				"conn_id", s.connID,
				"duration", duration.String())
		}

		logging.Logger.Info("SSH session ended",
			"conn_id", s.connID,
			"duration", duration.String())
	}

	updatedModel, cmd := s.HistoryModel.Update(msg)
	if m, ok := updatedModel.(*ui.HistoryModel); ok {
		s.HistoryModel = m
	}
	return s, cmd
}

func (s *sessionModel) View() string {
	return s.HistoryModel.View()
}

// teaHandler creates a history browser for each SSH connection. Every
// connection gets its own store handle on the shared database; WAL mode
// keeps concurrent readers happy.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	connID := fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr().String())

	logging.Logger.Info("New SSH session",
		"conn_id", connID,
		"user", sess.User(),
		"remote_addr", sess.RemoteAddr().String(),
		"term", pty.Term,
		"window", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

	store, err := storage.NewSQLiteStore(s.dbPath)
	if err != nil {
		logging.Logger.Error("Failed to open store for SSH session", "error", err, "conn_id", connID)
		fmt.Fprintf(sess, "failed to open session database: %v\n", err)
		return nil, nil
	}

	history := services.NewHistoryService(store, store)
	model := &sessionModel{
		HistoryModel: ui.NewHistoryModel(history),
		connID:       connID,
		startTime:    time.Now(),
		store:        store,
	}

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}
