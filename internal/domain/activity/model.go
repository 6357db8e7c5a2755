package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeChapterCreated ActivityType = "chapter_created"
	TypeChapterMoved   ActivityType = "chapter_moved"
	TypeChapterRenamed ActivityType = "chapter_renamed"
	TypeChapterRemoved ActivityType = "chapter_removed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ProjectID    string       `json:"project_id"`
	ChapterID    *string      `json:"chapter_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
