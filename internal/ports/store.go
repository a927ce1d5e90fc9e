package ports

import (
	"context"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

// SessionReader reads persisted conversation sessions
type SessionReader interface {
	// ListAll returns every stored session, most recent last. Consumers
	// that want newest-first display are expected to reverse.
	ListAll(ctx context.Context) ([]domain.ConversationSession, error)

	// Current returns the most recently touched session, or
	// domain.ErrSessionNotFound when none has been stored yet.
	Current(ctx context.Context) (*domain.ConversationSession, error)
}

// SessionWriter appends and updates conversation sessions
type SessionWriter interface {
	// Append adds a new session to the catalog and makes it current. The
	// write merges against what is currently persisted, never an in-memory
	// cache, so sessions written by another process are not lost.
	Append(ctx context.Context, session domain.ConversationSession) error

	// Update merges fields into the catalog entry matching the id and into
	// the current pointer. An id missing from the catalog is not an error;
	// the current pointer is still refreshed.
	Update(ctx context.Context, sessionID string, update domain.SessionUpdate) error
}

// SessionRemover deletes sessions. Owned by the history view, but it
// operates on the same underlying store.
type SessionRemover interface {
	Remove(ctx context.Context, sessionID string) error
	Clear(ctx context.Context) error
}

// SessionStore is the composite persistence interface
type SessionStore interface {
	SessionReader
	SessionWriter
	SessionRemover
	Close() error
}
