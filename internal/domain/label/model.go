package label

import "time"

// DefaultName is the label every new chapter starts with.
const DefaultName = "Narration"

// Label names a voice that text blocks in a chapter can be assigned to
type Label struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
