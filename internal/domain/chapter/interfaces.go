package chapter

import (
	"context"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
)

// Repository provides persistence for chapters.
type Repository interface {
	Create(ctx context.Context, tenantID string, ch *Chapter) error
	Get(ctx context.Context, tenantID, id string) (*Chapter, error)
	List(ctx context.Context, tenantID string) ([]Chapter, error)
	ListByProject(ctx context.Context, tenantID, projectID string) ([]Chapter, error)
	Apply(ctx context.Context, tenantID string, batch Batch) error
}

// ProjectRepository resolves the project that owns a chapter list.
type ProjectRepository interface {
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
}

// LabelService creates the labels a new chapter starts with.
type LabelService interface {
	CreateDefault(ctx context.Context, chapterID string) (*label.Label, error)
}

// ActivityRepository logs chapter activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

// SearchRepository performs full-text search over chapter titles.
type SearchRepository interface {
	Search(ctx context.Context, tenantID, projectID, query string, limit int) ([]Chapter, error)
}
