package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
	"github.com/stretchr/testify/require"
)

type projectStub struct {
	createFn  func(context.Context, string, project.CreateRequest) (*project.Project, error)
	listFn    func(context.Context, string) ([]project.ProjectSummary, error)
	getFn     func(context.Context, string, string) (*project.Project, error)
	defaultFn func(context.Context, string) (*project.Project, error)
}

func (p projectStub) Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error) {
	return p.createFn(ctx, tenantID, req)
}
func (p projectStub) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	return p.listFn(ctx, tenantID)
}
func (p projectStub) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	return p.getFn(ctx, tenantID, id)
}
func (p projectStub) GetDefault(ctx context.Context, tenantID string) (*project.Project, error) {
	return p.defaultFn(ctx, tenantID)
}

type chapterStub struct {
	appendFn    func(context.Context, string, chapter.AppendRequest) (*chapter.Chapter, error)
	relocateFn  func(context.Context, string, chapter.RelocateRequest) (*chapter.Chapter, error)
	removeFn    func(context.Context, string, string) (*chapter.Chapter, error)
	renameFn    func(context.Context, string, string, string) (*chapter.Chapter, error)
	normalizeFn func(context.Context, string, string) ([]chapter.Chapter, error)
	getFn       func(context.Context, string, string) (*chapter.Chapter, error)
	listByFn    func(context.Context, string, string) ([]chapter.Chapter, error)
	listFn      func(context.Context, string) ([]chapter.Chapter, error)
	searchFn    func(context.Context, string, string, string, int) ([]chapter.Chapter, error)
}

func (c chapterStub) Append(ctx context.Context, tenantID string, req chapter.AppendRequest) (*chapter.Chapter, error) {
	return c.appendFn(ctx, tenantID, req)
}
func (c chapterStub) Relocate(ctx context.Context, tenantID string, req chapter.RelocateRequest) (*chapter.Chapter, error) {
	return c.relocateFn(ctx, tenantID, req)
}
func (c chapterStub) Remove(ctx context.Context, tenantID, id string) (*chapter.Chapter, error) {
	return c.removeFn(ctx, tenantID, id)
}
func (c chapterStub) Rename(ctx context.Context, tenantID, id, title string) (*chapter.Chapter, error) {
	return c.renameFn(ctx, tenantID, id, title)
}
func (c chapterStub) Normalize(ctx context.Context, tenantID, projectID string) ([]chapter.Chapter, error) {
	return c.normalizeFn(ctx, tenantID, projectID)
}
func (c chapterStub) Get(ctx context.Context, tenantID, id string) (*chapter.Chapter, error) {
	return c.getFn(ctx, tenantID, id)
}
func (c chapterStub) ListByProject(ctx context.Context, tenantID, projectID string) ([]chapter.Chapter, error) {
	return c.listByFn(ctx, tenantID, projectID)
}
func (c chapterStub) List(ctx context.Context, tenantID string) ([]chapter.Chapter, error) {
	return c.listFn(ctx, tenantID)
}
func (c chapterStub) Search(ctx context.Context, tenantID, projectID, query string, limit int) ([]chapter.Chapter, error) {
	return c.searchFn(ctx, tenantID, projectID, query, limit)
}

type labelStub struct {
	listFn func(context.Context, string) ([]label.Label, error)
}

func (l labelStub) List(ctx context.Context, chapterID string) ([]label.Label, error) {
	return l.listFn(ctx, chapterID)
}

type activityStub struct {
	listFn func(context.Context, string, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (a activityStub) GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return a.listFn(ctx, tenantID, opts)
}

func defaultProjects() projectStub {
	return projectStub{
		createFn: func(_ context.Context, _ string, req project.CreateRequest) (*project.Project, error) {
			return &project.Project{ID: req.ID, Name: req.Name}, nil
		},
		listFn: func(_ context.Context, _ string) ([]project.ProjectSummary, error) {
			return nil, nil
		},
		getFn: func(_ context.Context, _ string, id string) (*project.Project, error) {
			if id == "missing" {
				return nil, project.ErrProjectNotFound
			}
			return &project.Project{ID: id, Name: "Proj"}, nil
		},
		defaultFn: func(_ context.Context, _ string) (*project.Project, error) {
			return &project.Project{ID: "default-proj", Name: "Default"}, nil
		},
	}
}

func TestHandler_ProjectCommands(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	handler := NewHandler(Services{Projects: defaultProjects()})

	out, err := handler.Handle(ctx, tenantID, "create_project", mustJSON(t, CreateProjectParams{ID: "p1", Name: "Proj"}))
	require.NoError(t, err)
	require.Equal(t, "p1", out.(*project.Project).ID)

	out, err = handler.Handle(ctx, tenantID, "list_projects", nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(mustJSON(t, out)))

	out, err = handler.Handle(ctx, tenantID, "get_project", nil)
	require.NoError(t, err)
	require.Equal(t, "default-proj", out.(*project.Project).ID)

	_, err = handler.Handle(ctx, tenantID, "get_project", mustJSON(t, GetProjectParams{ID: "missing"}))
	requireCode(t, err, CodeProjectNotFound)
}

func TestHandler_ChapterCommands(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	var relocated chapter.RelocateRequest
	handler := NewHandler(Services{
		Projects: defaultProjects(),
		Chapters: chapterStub{
			appendFn: func(_ context.Context, _ string, req chapter.AppendRequest) (*chapter.Chapter, error) {
				return &chapter.Chapter{ID: "c1", ProjectID: req.ProjectID, Title: chapter.DefaultTitle(1), OrderNumber: 1}, nil
			},
			getFn: func(_ context.Context, _ string, id string) (*chapter.Chapter, error) {
				return &chapter.Chapter{ID: id, ProjectID: "p9", OrderNumber: 3}, nil
			},
			relocateFn: func(_ context.Context, _ string, req chapter.RelocateRequest) (*chapter.Chapter, error) {
				relocated = req
				return &chapter.Chapter{ID: req.ID, ProjectID: req.ProjectID, OrderNumber: req.OrderNumber}, nil
			},
			renameFn: func(_ context.Context, _ string, id, title string) (*chapter.Chapter, error) {
				return &chapter.Chapter{ID: id, Title: title}, nil
			},
			removeFn: func(_ context.Context, _ string, id string) (*chapter.Chapter, error) {
				return &chapter.Chapter{ID: id}, nil
			},
			listByFn: func(_ context.Context, _ string, _ string) ([]chapter.Chapter, error) {
				return nil, nil
			},
			listFn: func(_ context.Context, _ string) ([]chapter.Chapter, error) {
				return []chapter.Chapter{{ID: "c1"}}, nil
			},
			normalizeFn: func(_ context.Context, _ string, _ string) ([]chapter.Chapter, error) {
				return []chapter.Chapter{{ID: "c1", OrderNumber: 1}}, nil
			},
			searchFn: func(_ context.Context, _ string, projectID, query string, limit int) ([]chapter.Chapter, error) {
				require.Equal(t, "default-proj", projectID)
				require.Equal(t, "storm", query)
				require.Equal(t, 5, limit)
				return []chapter.Chapter{{ID: "c2"}}, nil
			},
		},
	})

	out, err := handler.Handle(ctx, tenantID, "create_chapter", nil)
	require.NoError(t, err)
	require.Equal(t, "default-proj", out.(*chapter.Chapter).ProjectID)
	require.Equal(t, "Chapter 1", out.(*chapter.Chapter).Title)

	_, err = handler.Handle(ctx, tenantID, "create_chapter", mustJSON(t, CreateChapterParams{ProjectID: "missing"}))
	requireCode(t, err, CodeProjectNotFound)

	// Project resolved from the chapter when omitted
	_, err = handler.Handle(ctx, tenantID, "move_chapter", mustJSON(t, MoveChapterParams{ID: "c3", OrderNumber: 1}))
	require.NoError(t, err)
	require.Equal(t, chapter.RelocateRequest{ProjectID: "p9", ID: "c3", OrderNumber: 1}, relocated)

	out, err = handler.Handle(ctx, tenantID, "rename_chapter", mustJSON(t, RenameChapterParams{ID: "c1", Title: "Prologue"}))
	require.NoError(t, err)
	require.Equal(t, "Prologue", out.(*chapter.Chapter).Title)

	_, err = handler.Handle(ctx, tenantID, "remove_chapter", mustJSON(t, RemoveChapterParams{ID: "c1"}))
	require.NoError(t, err)

	out, err = handler.Handle(ctx, tenantID, "list_chapters", nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(mustJSON(t, out)))

	out, err = handler.Handle(ctx, tenantID, "list_all_chapters", nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = handler.Handle(ctx, tenantID, "normalize_chapters", nil)
	require.NoError(t, err)

	out, err = handler.Handle(ctx, tenantID, "search_chapters", mustJSON(t, SearchChaptersParams{Query: "storm", Limit: 5}))
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestHandler_LabelsAndActivity(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	handler := NewHandler(Services{
		Projects: defaultProjects(),
		Chapters: chapterStub{
			getFn: func(_ context.Context, _ string, id string) (*chapter.Chapter, error) {
				if id == "other-tenant" {
					return nil, chapter.ErrChapterNotFound
				}
				return &chapter.Chapter{ID: id}, nil
			},
		},
		Labels: labelStub{listFn: func(_ context.Context, chapterID string) ([]label.Label, error) {
			return []label.Label{{ChapterID: chapterID, Name: label.DefaultName}}, nil
		}},
		Activity: activityStub{listFn: func(_ context.Context, _ string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
			require.Equal(t, "p1", opts.ProjectID)
			require.Equal(t, 10, opts.Limit)
			return nil, nil
		}},
	})

	out, err := handler.Handle(ctx, tenantID, "list_labels", mustJSON(t, ListLabelsParams{ChapterID: "c1"}))
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = handler.Handle(ctx, tenantID, "list_labels", mustJSON(t, ListLabelsParams{ChapterID: "other-tenant"}))
	requireCode(t, err, CodeChapterNotFound)

	out, err = handler.Handle(ctx, tenantID, "recent_activity", mustJSON(t, RecentActivityParams{ProjectID: "p1", Limit: 10}))
	require.NoError(t, err)
	require.Equal(t, "[]", string(mustJSON(t, out)))
}

func TestHandler_Errors(t *testing.T) {
	ctx := context.Background()

	handler := NewHandler(Services{
		Projects: defaultProjects(),
		Chapters: chapterStub{
			relocateFn: func(_ context.Context, _ string, _ chapter.RelocateRequest) (*chapter.Chapter, error) {
				return nil, chapter.ErrInvalidTarget
			},
			renameFn: func(_ context.Context, _ string, _, _ string) (*chapter.Chapter, error) {
				return nil, errors.New("disk full")
			},
		},
	})

	_, err := handler.Handle(ctx, "tenant1", "no_such_method", nil)
	requireCode(t, err, CodeMethodNotFound)

	_, err = handler.Handle(ctx, "tenant1", "move_chapter", json.RawMessage(`{"id": 7}`))
	requireCode(t, err, CodeInvalidParams)

	_, err = handler.Handle(ctx, "tenant1", "move_chapter", mustJSON(t, MoveChapterParams{ProjectID: "p1", ID: "c1", OrderNumber: 99}))
	requireCode(t, err, CodeInvalidTarget)

	// Unmapped errors pass through unchanged.
	_, err = handler.Handle(ctx, "tenant1", "rename_chapter", mustJSON(t, RenameChapterParams{ID: "c1", Title: "x"}))
	require.EqualError(t, err, "disk full")
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{chapter.ErrChapterNotFound, CodeChapterNotFound},
		{label.ErrChapterNotFound, CodeChapterNotFound},
		{project.ErrProjectNotFound, CodeProjectNotFound},
		{project.ErrProjectExists, CodeProjectExists},
		{chapter.ErrInvalidTarget, CodeInvalidTarget},
		{chapter.ErrConflict, CodeConflict},
		{chapter.ErrInconsistentOrder, CodeInconsistentOrder},
		{chapter.ErrInvalidInput, CodeInvalidInput},
		{activity.ErrInvalidInput, CodeInvalidInput},
	}
	for _, tt := range tests {
		apiErr := MapError(tt.err)
		require.NotNil(t, apiErr, tt.err.Error())
		require.Equal(t, tt.code, apiErr.Code)
	}

	require.Equal(t, "No matching Id", MapError(chapter.ErrChapterNotFound).Message)
	require.Nil(t, MapError(errors.New("boom")))
	require.Nil(t, MapError(nil))
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
