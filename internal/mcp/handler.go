package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error)
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	GetDefault(ctx context.Context, tenantID string) (*project.Project, error)
}

// ChapterService defines chapter operations needed by MCP.
type ChapterService interface {
	Append(ctx context.Context, tenantID string, req chapter.AppendRequest) (*chapter.Chapter, error)
	Relocate(ctx context.Context, tenantID string, req chapter.RelocateRequest) (*chapter.Chapter, error)
	Remove(ctx context.Context, tenantID, id string) (*chapter.Chapter, error)
	Rename(ctx context.Context, tenantID, id, title string) (*chapter.Chapter, error)
	Normalize(ctx context.Context, tenantID, projectID string) ([]chapter.Chapter, error)
	Get(ctx context.Context, tenantID, id string) (*chapter.Chapter, error)
	ListByProject(ctx context.Context, tenantID, projectID string) ([]chapter.Chapter, error)
	List(ctx context.Context, tenantID string) ([]chapter.Chapter, error)
	Search(ctx context.Context, tenantID, projectID, query string, limit int) ([]chapter.Chapter, error)
}

// LabelService defines label operations needed by MCP.
type LabelService interface {
	List(ctx context.Context, chapterID string) ([]label.Label, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Chapters ChapterService
	Labels   LabelService
	Activity ActivityService
}

// Handler dispatches MCP commands.
type Handler struct {
	projects ProjectService
	chapters ChapterService
	labels   LabelService
	activity ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		projects: services.Projects,
		chapters: services.Chapters,
		labels:   services.Labels,
		activity: services.Activity,
	}
}

// Handle dispatches a method call to the domain services. Errors with a
// client-facing meaning are returned as *APIError.
func (h *Handler) Handle(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return result(h.projects.Create(ctx, tenantID, project.CreateRequest{
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
		}))
	case "list_projects":
		projects, err := h.projects.List(ctx, tenantID)
		if err != nil {
			return nil, mapError(err)
		}
		if projects == nil {
			projects = []project.ProjectSummary{}
		}
		return projects, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return result(h.getProjectOrDefault(ctx, tenantID, req.ID))

	case "create_chapter":
		var req CreateChapterParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.getProjectOrDefault(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return result(h.chapters.Append(ctx, tenantID, chapter.AppendRequest{
			ProjectID: proj.ID,
			Title:     req.Title,
		}))
	case "list_chapters":
		var req ListChaptersParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.getProjectOrDefault(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return chapterList(h.chapters.ListByProject(ctx, tenantID, proj.ID))
	case "list_all_chapters":
		return chapterList(h.chapters.List(ctx, tenantID))
	case "get_chapter":
		var req GetChapterParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return result(h.chapters.Get(ctx, tenantID, req.ID))
	case "move_chapter":
		var req MoveChapterParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projectID := req.ProjectID
		if projectID == "" {
			current, err := h.chapters.Get(ctx, tenantID, req.ID)
			if err != nil {
				return nil, mapError(err)
			}
			projectID = current.ProjectID
		}
		return result(h.chapters.Relocate(ctx, tenantID, chapter.RelocateRequest{
			ProjectID:   projectID,
			ID:          req.ID,
			OrderNumber: req.OrderNumber,
		}))
	case "rename_chapter":
		var req RenameChapterParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return result(h.chapters.Rename(ctx, tenantID, req.ID, req.Title))
	case "remove_chapter":
		var req RemoveChapterParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return result(h.chapters.Remove(ctx, tenantID, req.ID))
	case "normalize_chapters":
		var req NormalizeChaptersParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.getProjectOrDefault(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return chapterList(h.chapters.Normalize(ctx, tenantID, proj.ID))
	case "search_chapters":
		var req SearchChaptersParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.getProjectOrDefault(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return chapterList(h.chapters.Search(ctx, tenantID, proj.ID, req.Query, req.Limit))

	case "list_labels":
		var req ListLabelsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		// Labels are not tenant-scoped; the chapter lookup is.
		if _, err := h.chapters.Get(ctx, tenantID, req.ChapterID); err != nil {
			return nil, mapError(err)
		}
		labels, err := h.labels.List(ctx, req.ChapterID)
		if err != nil {
			return nil, mapError(err)
		}
		if labels == nil {
			labels = []label.Label{}
		}
		return labels, nil
	case "recent_activity":
		var req RecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.getProjectOrDefault(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		entries, err := h.activity.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{
			ProjectID: proj.ID,
			ChapterID: req.ChapterID,
			Limit:     req.Limit,
		})
		if err != nil {
			return nil, mapError(err)
		}
		if entries == nil {
			entries = []activity.ActivityEntry{}
		}
		return entries, nil
	default:
		return nil, &APIError{
			Code:         CodeMethodNotFound,
			Message:      fmt.Sprintf("unknown method: %s", method),
			RecoveryHint: "Call tools/list for available methods",
		}
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

func (h *Handler) getProjectOrDefault(ctx context.Context, tenantID, projectID string) (*project.Project, error) {
	if projectID == "" {
		return h.projects.GetDefault(ctx, tenantID)
	}
	return h.projects.Get(ctx, tenantID, projectID)
}

func result[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

// chapterList keeps empty lists as [] on the wire.
func chapterList(chapters []chapter.Chapter, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	if chapters == nil {
		chapters = []chapter.Chapter{}
	}
	return chapters, nil
}
