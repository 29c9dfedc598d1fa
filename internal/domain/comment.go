package domain

import "time"

// MaxThreadDepth is the deepest allowed reply nesting. A root comment has
// depth 0; replies below depth 3 are rejected.
const MaxThreadDepth = 3

// Comment is a positioned, threaded annotation on a presentation. Comments
// form a forest via ParentCommentID (nil marks a root).
type Comment struct {
	ID              uint64    `json:"id"`
	PresentationID  uint64    `json:"presentation_id" gorm:"index"`
	SlideID         *string   `json:"slide_id,omitempty" gorm:"index"`
	AuthorID        uint64    `json:"author_id"`
	Content         string    `json:"content"`
	PositionX       *float64  `json:"position_x,omitempty"`
	PositionY       *float64  `json:"position_y,omitempty"`
	IsResolved      bool      `json:"is_resolved" gorm:"default:false"`
	ParentCommentID *uint64   `json:"parent_comment_id,omitempty" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CommentNode is a comment with its replies attached, as returned by the
// forest builder. Replies are ordered chronologically.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}
