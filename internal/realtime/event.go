package realtime

import (
	"time"
)

// Event types published on a presentation's channel
const (
	EventCollaboratorJoined  = "collaborator_joined"
	EventCollaboratorUpdated = "collaborator_updated"
	EventCollaboratorRemoved = "collaborator_removed"
	EventCommentAdded        = "comment_added"
	EventCommentUpdated      = "comment_updated"
	EventCommentDeleted      = "comment_deleted"
	EventCommentResolved     = "comment_resolved"
	EventPresenceUpdated     = "presence_updated"
	EventPresenceOffline     = "presence_offline"
	EventVersionCreated      = "version_created"
	EventInvitationCreated   = "invitation_created"
	EventInvitationCancelled = "invitation_cancelled"
)

// Event is one state transition on a presentation. ID is unique per
// emission so subscribers can drop duplicates under at-least-once
// delivery; Payload is the already-serialized entity the event concerns.
type Event struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	PresentationID uint64    `json:"presentation_id"`
	Payload        any       `json:"payload"`
	Timestamp      time.Time `json:"timestamp"`
}
