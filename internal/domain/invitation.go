package domain

import "time"

// Invitation statuses. Expired is derived from ExpiresAt lazily on read
// and persisted as a side effect, never by a background sweep.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

// Invitation grants one-time collaborator enrollment via an unguessable
// single-use token.
type Invitation struct {
	ID              uint64    `json:"id"`
	PresentationID  uint64    `json:"presentation_id" gorm:"index"`
	InviterID       uint64    `json:"inviter_id"`
	InviteeEmail    string    `json:"invitee_email" gorm:"index"`
	PermissionLevel string    `json:"permission_level"`
	Status          string    `json:"status" gorm:"default:pending"`
	Token           string    `json:"-" gorm:"uniqueIndex"`
	Message         *string   `json:"message,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Expired reports whether the invitation's TTL has elapsed, independent of
// its stored status.
func (i *Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
