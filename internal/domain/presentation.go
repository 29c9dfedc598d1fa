package domain

import "time"

// Presentation is the shared document collaborators work on
type Presentation struct {
	ID            uint64         `json:"id"`
	Title         string         `json:"title"`
	OwnerID       uint64         `json:"owner_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Collaborators []Collaborator `json:"-"`
}

// Collaborator is a user with a standing permission level on a presentation.
// One row per (presentation, user).
type Collaborator struct {
	ID              uint64    `json:"id"`
	PresentationID  uint64    `json:"presentation_id" gorm:"uniqueIndex:idx_presentation_user"`
	UserID          uint64    `json:"user_id" gorm:"uniqueIndex:idx_presentation_user"`
	PermissionLevel string    `json:"permission_level"`
	JoinedAt        time.Time `json:"joined_at"`
	LastSeen        time.Time `json:"last_seen"`
}
