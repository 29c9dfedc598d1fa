package domain

import "time"

// CursorPosition is a collaborator's pointer location within a slide.
type CursorPosition struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	SlideID *string `json:"slide_id,omitempty"`
}

// UserPresence is ephemeral per-user liveness state for one presentation.
// It lives only in Redis and is derived entirely from heartbeats.
type UserPresence struct {
	UserID         uint64          `json:"user_id"`
	PresentationID uint64          `json:"presentation_id"`
	IsOnline       bool            `json:"is_online"`
	Cursor         *CursorPosition `json:"cursor,omitempty"`
	CurrentSlideID *string         `json:"current_slide_id,omitempty"`
	LastActivity   time.Time       `json:"last_activity"`
}
