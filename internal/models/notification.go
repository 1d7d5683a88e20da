package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"not null;index" json:"user_id"`
	Type    string         `gorm:"not null" json:"type"`
	Title   string         `gorm:"not null" json:"title"`
	Message string         `json:"message"`
	Data    datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	// Invariant: IsRead == true iff ReadAt is set.
	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// RealtimeUpdate is a short-lived feed entry behind the live activity
// stream. Rows older than the retention window are purged by the
// retention worker.
type RealtimeUpdate struct {
	BaseModel
	UserID   string         `gorm:"not null;index" json:"user_id"`
	Type     string         `gorm:"not null" json:"type"`
	Payload  datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsRead   bool           `gorm:"default:false" json:"is_read"`
}

// UserActivity is append-only; nothing user-facing reads it back.
type UserActivity struct {
	BaseModel
	UserID   string         `gorm:"not null;index" json:"user_id"`
	Activity string         `gorm:"not null" json:"activity"`
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}
