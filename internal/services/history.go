package services

import (
	"context"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
)

// HistoryService is the read side of the session store plus the explicitly
// store-owned deletions. It never mutates a stored conversation.
type HistoryService struct {
	reader  ports.SessionReader
	remover ports.SessionRemover
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(reader ports.SessionReader, remover ports.SessionRemover) *HistoryService {
	return &HistoryService{reader: reader, remover: remover}
}

// List returns all sessions, most recent first.
func (h *HistoryService) List(ctx context.Context) ([]domain.ConversationSession, error) {
	sessions, err := h.reader.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// Store order is most-recent-last; display wants newest on top
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// Get returns a single session by id.
func (h *HistoryService) Get(ctx context.Context, sessionID string) (*domain.ConversationSession, error) {
	sessions, err := h.reader.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

// Delete removes a single session.
func (h *HistoryService) Delete(ctx context.Context, sessionID string) error {
	return h.remover.Remove(ctx, sessionID)
}

// Clear removes every stored session and the current pointer.
func (h *HistoryService) Clear(ctx context.Context) error {
	return h.remover.Clear(ctx)
}
