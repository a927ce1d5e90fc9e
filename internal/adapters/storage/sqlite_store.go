package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore implements ports.SessionStore using GORM.
//
// Every Append/Update is a read-merge-write against the database, never an
// in-memory cache: other processes may write the same file independently and
// last-writer-wins is the accepted consistency model.
type SQLiteStore struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.SessionStore = (*SQLiteStore)(nil)

// gormLogger wraps the application logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("ASRNANO_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteStore opens (or creates) the session database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Expand home directory if present
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for concurrent access from multiple processes
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&ConversationSessionModel{}, &CurrentSessionModel{}); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("failed to migrate session schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Append adds a new session to the catalog and makes it current.
func (s *SQLiteStore) Append(ctx context.Context, session domain.ConversationSession) error {
	model, err := domainToSessionModel(session)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
				return fmt.Errorf("%w: %s", domain.ErrSessionExists, session.ID)
			}
			return fmt.Errorf("failed to append session: %w", err)
		}
		if err := s.writeCurrent(tx, session); err != nil {
			return err
		}

		logging.Logger.Info("Session appended",
			"session_id", session.ID,
			"scenario_id", session.ScenarioID)
		return nil
	})
}

// Update merges fields into the catalog entry matching sessionID and into
// the current-session record. A missing catalog entry is a no-op for the
// catalog; the current record is still refreshed.
func (s *SQLiteStore) Update(ctx context.Context, sessionID string, update domain.SessionUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ConversationSessionModel
		err := tx.First(&model, "id = ?", sessionID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			logging.Logger.Warn("Update for unknown session, catalog untouched", "session_id", sessionID)
		case err != nil:
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		default:
			session, err := sessionModelToDomain(model)
			if err != nil {
				return err
			}
			update.Apply(&session)
			updated, err := domainToSessionModel(session)
			if err != nil {
				return err
			}
			updated.CreatedAt = model.CreatedAt
			if err := tx.Save(&updated).Error; err != nil {
				return fmt.Errorf("failed to update session %s: %w", sessionID, err)
			}
		}

		// Refresh the current record with the same merge
		var record CurrentSessionModel
		err = tx.First(&record, "key = ?", currentKey).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load current session: %w", err)
		}

		current, err := decodeCurrent(record.Session)
		if err != nil {
			return err
		}
		update.Apply(&current)
		return s.writeCurrent(tx, current)
	})
}

// ListAll returns every stored session, most recent last.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.ConversationSession, error) {
	var models []ConversationSessionModel
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]domain.ConversationSession, 0, len(models))
	for _, m := range models {
		session, err := sessionModelToDomain(m)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Current returns the most recently touched session.
func (s *SQLiteStore) Current(ctx context.Context) (*domain.ConversationSession, error) {
	var record CurrentSessionModel
	err := s.db.WithContext(ctx).First(&record, "key = ?", currentKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current session: %w", err)
	}

	session, err := decodeCurrent(record.Session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Remove deletes a single session from the catalog. The current record is
// left alone; it only ever points at the most recently touched session and
// is overwritten by the next conversation.
func (s *SQLiteStore) Remove(ctx context.Context, sessionID string) error {
	result := s.db.WithContext(ctx).Delete(&ConversationSessionModel{}, "id = ?", sessionID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove session %s: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	logging.Logger.Info("Session removed", "session_id", sessionID)
	return nil
}

// Clear wipes the catalog and the current record.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ConversationSessionModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&CurrentSessionModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear current session: %w", err)
		}

		logging.Logger.Info("Session history cleared")
		return nil
	})
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// writeCurrent upserts the single current-session record.
func (s *SQLiteStore) writeCurrent(tx *gorm.DB, session domain.ConversationSession) error {
	encoded, err := encodeCurrent(session)
	if err != nil {
		return err
	}

	record := CurrentSessionModel{Key: currentKey, Session: encoded}
	if err := tx.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to write current session: %w", err)
	}
	return nil
}

// parseTime decodes a stored timestamp, tolerating records written by other
// clients with plain RFC3339.
func parseTime(value string) time.Time {
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
