package storage

import "time"

// ConversationSessionModel is the GORM model for the session catalog. The
// turn history is stored serialized, the way the record travels on the wire;
// individual turns are never queried relationally.
type ConversationSessionModel struct {
	ID              string    `gorm:"primaryKey"`
	ScenarioID      string    `gorm:"not null;index:idx_scenario_id"`
	CreatedAt       time.Time `gorm:"not null;index:idx_created_at"`
	OpeningMessage  string    `gorm:"not null;default:''"`
	Turns           string    `gorm:"not null;default:'[]'"`
	TurnCount       int       `gorm:"not null;default:0"`
	Completed       bool      `gorm:"not null;default:false"`
	FinalEvaluation string    `gorm:"not null;default:''"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (ConversationSessionModel) TableName() string { return "conversation_sessions" }

// CurrentSessionModel is the single-row record holding the most recently
// touched session, serialized whole. Key is always currentKey.
type CurrentSessionModel struct {
	Key       string `gorm:"primaryKey"`
	Session   string `gorm:"not null;default:'{}'"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (CurrentSessionModel) TableName() string { return "current_session" }

const currentKey = "current"
