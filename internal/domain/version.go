package domain

import "time"

// DefaultBranch is the branch every presentation starts on.
const DefaultBranch = "main"

// Version is one node of a presentation's version graph. Versions sharing
// a BranchName form a linear chain ordered by VersionNumber; a branch's
// first version points ParentVersionID at the version it forked from (nil
// for the very first version of the presentation). Exactly one version per
// (presentation, branch) carries IsCurrent.
type Version struct {
	ID              uint64    `json:"id"`
	PresentationID  uint64    `json:"presentation_id" gorm:"index:idx_presentation_branch"`
	BranchName      string    `json:"branch_name" gorm:"index:idx_presentation_branch"`
	VersionNumber   uint64    `json:"version_number"`
	ParentVersionID *uint64   `json:"parent_version_id,omitempty"`
	IsCurrent       bool      `json:"is_current" gorm:"default:false"`
	CreatedByID     uint64    `json:"created_by"`
	ChangeSummary   string    `json:"change_summary"`
	Snapshot        []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
