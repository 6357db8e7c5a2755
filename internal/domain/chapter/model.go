package chapter

import "time"

// Chapter is one ordered element of a project
type Chapter struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	OrderNumber int       `json:"order_number"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Batch is a set of chapter writes the store applies atomically.
// Each update carries the version it was read at; the store rejects the whole
// batch if any row has moved on since. When Expect is set the store also
// rejects it if the project has gained or lost chapters since the read.
type Batch struct {
	Updates  []Chapter
	DeleteID string
	Expect   *Snapshot
}

// Snapshot is the shape of a project's chapter list when a plan was made.
type Snapshot struct {
	ProjectID string
	Count     int
	MaxOrder  int
}

// SnapshotOf records the shape of chapters, the full list of projectID.
func SnapshotOf(projectID string, chapters []Chapter) *Snapshot {
	return &Snapshot{
		ProjectID: projectID,
		Count:     len(chapters),
		MaxOrder:  NextOrderNumber(chapters) - 1,
	}
}

// Empty reports whether the batch has nothing to write.
func (b Batch) Empty() bool {
	return len(b.Updates) == 0 && b.DeleteID == ""
}
