package dto

import "time"

type CreateNotificationRequest struct {
	UserID  string                 `json:"user_id" validate:"required"`
	Type    string                 `json:"type" validate:"required"`
	Title   string                 `json:"title" validate:"required,max=200"`
	Message string                 `json:"message" validate:"max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type NotificationResponse struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationListResponse is one keyset page. NextCursor is empty on the
// last page; clients treat it as opaque.
type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	NextCursor    string                  `json:"next_cursor,omitempty"`
}

type RealtimeUpdateResponse struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IsRead    bool                   `json:"is_read"`
	Timestamp time.Time              `json:"timestamp"`
}

type TrackActivityRequest struct {
	Activity string                 `json:"activity" validate:"required,max=100"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
