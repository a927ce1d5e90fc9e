package cmd

import (
	"fmt"

	"github.com/Kanompung1988/ASR-NANO/internal/adapters/audio"
	"github.com/Kanompung1988/ASR-NANO/internal/adapters/coach"
	"github.com/Kanompung1988/ASR-NANO/internal/adapters/storage"
	"github.com/Kanompung1988/ASR-NANO/internal/config"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
	"github.com/Kanompung1988/ASR-NANO/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Conversation *services.ConversationService
	History      *services.HistoryService
	Coach        ports.CoachClient
	Recorder     ports.Recorder
	DBPath       string

	store ports.SessionStore
}

// NewContainer creates a new dependency container
func NewContainer(serverURL, dbPath, recorderCommand string) (*Container, error) {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	coachClient := coach.NewClient(serverURL)
	recorder := audio.NewRecorder(recorderCommand, config.GetCaptureLockPath())

	return &Container{
		Conversation: services.NewConversationService(coachClient, store),
		History:      services.NewHistoryService(store, store),
		Coach:        coachClient,
		Recorder:     recorder,
		DBPath:       dbPath,
		store:        store,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
