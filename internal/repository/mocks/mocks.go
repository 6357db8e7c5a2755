package mocks

import (
	"context"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetDefault(ctx context.Context, tenantID string) (*project.Project, error) {
	args := m.Called(ctx, tenantID)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChapterRepository is a mock for chapter.Repository.
type ChapterRepository struct {
	mock.Mock
}

func (m *ChapterRepository) Create(ctx context.Context, tenantID string, ch *chapter.Chapter) error {
	args := m.Called(ctx, tenantID, ch)
	return args.Error(0)
}

func (m *ChapterRepository) Get(ctx context.Context, tenantID, id string) (*chapter.Chapter, error) {
	args := m.Called(ctx, tenantID, id)
	if ch, ok := args.Get(0).(*chapter.Chapter); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChapterRepository) List(ctx context.Context, tenantID string) ([]chapter.Chapter, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]chapter.Chapter); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChapterRepository) ListByProject(ctx context.Context, tenantID, projectID string) ([]chapter.Chapter, error) {
	args := m.Called(ctx, tenantID, projectID)
	if list, ok := args.Get(0).([]chapter.Chapter); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChapterRepository) Apply(ctx context.Context, tenantID string, batch chapter.Batch) error {
	args := m.Called(ctx, tenantID, batch)
	return args.Error(0)
}

// LabelRepository is a mock for label.Repository.
type LabelRepository struct {
	mock.Mock
}

func (m *LabelRepository) Create(ctx context.Context, lbl *label.Label) error {
	args := m.Called(ctx, lbl)
	return args.Error(0)
}

func (m *LabelRepository) ListByChapter(ctx context.Context, chapterID string) ([]label.Label, error) {
	args := m.Called(ctx, chapterID)
	if list, ok := args.Get(0).([]label.Label); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// LabelService is a mock for chapter.LabelService.
type LabelService struct {
	mock.Mock
}

func (m *LabelService) CreateDefault(ctx context.Context, chapterID string) (*label.Label, error) {
	args := m.Called(ctx, chapterID)
	if lbl, ok := args.Get(0).(*label.Label); ok {
		return lbl, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchRepository is a mock for chapter.SearchRepository.
type SearchRepository struct {
	mock.Mock
}

func (m *SearchRepository) Search(ctx context.Context, tenantID, projectID, query string, limit int) ([]chapter.Chapter, error) {
	args := m.Called(ctx, tenantID, projectID, query, limit)
	if list, ok := args.Get(0).([]chapter.Chapter); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
