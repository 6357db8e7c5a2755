package chapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/project"
	"github.com/ganot/ttsprep/internal/lock"
	"github.com/ganot/ttsprep/internal/repository"
	"github.com/google/uuid"
)

const defaultSearchLimit = 20

// Service keeps each project's chapters numbered 1..N across appends,
// moves and removals.
//
// The service holds no chapter state between calls. Every mutating operation
// takes the project's lock, reads the full chapter list, plans the new order
// in memory and writes it back as one atomic batch.
type Service struct {
	chapters   Repository
	projects   ProjectRepository
	labels     LabelService
	activities ActivityRepository
	search     SearchRepository
	locker     lock.Locker
	logger     *slog.Logger
}

// NewService creates a new chapter service. A nil locker falls back to an
// in-process lock, which is only safe with a single server instance.
func NewService(
	chapters Repository,
	projects ProjectRepository,
	labels LabelService,
	activities ActivityRepository,
	search SearchRepository,
	locker lock.Locker,
	logger *slog.Logger,
) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		chapters:   chapters,
		projects:   projects,
		labels:     labels,
		activities: activities,
		search:     search,
		locker:     locker,
		logger:     logger,
	}
}

// AppendRequest describes a chapter creation request.
type AppendRequest struct {
	ProjectID string
	Title     string
}

// RelocateRequest moves a chapter to a new order number.
type RelocateRequest struct {
	ProjectID   string
	ID          string
	OrderNumber int
}

// Append adds a chapter after the last chapter of the project.
func (s *Service) Append(ctx context.Context, tenantID string, req AppendRequest) (*Chapter, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, ErrInvalidInput
	}

	unlock, err := s.lockProject(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	siblings, err := s.loadProject(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	orderNumber := NextOrderNumber(siblings)
	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle(orderNumber)
	}

	now := time.Now()
	ch := &Chapter{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		ProjectID:   req.ProjectID,
		Title:       title,
		OrderNumber: orderNumber,
		Version:     1,
		CreatedAt:   now,
		ModifiedAt:  now,
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := s.chapters.Create(writeCtx, tenantID, ch); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrConflict
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("creating chapter: %w", err)
	}

	if s.labels != nil {
		if _, err := s.labels.CreateDefault(writeCtx, ch.ID); err != nil {
			if rbErr := s.chapters.Apply(writeCtx, tenantID, Batch{DeleteID: ch.ID}); rbErr != nil {
				s.logger.Error("failed to roll back chapter", "chapter_id", ch.ID, "error", rbErr)
			}
			return nil, fmt.Errorf("creating default label: %w", err)
		}
	}

	s.logger.Debug("chapter appended",
		"tenant_id", tenantID, "project_id", ch.ProjectID, "chapter_id", ch.ID, "order_number", ch.OrderNumber)
	s.logActivity(ctx, tenantID, ch, activity.TypeChapterCreated,
		fmt.Sprintf("created chapter %s at %d", ch.ID, ch.OrderNumber), nil)

	return ch, nil
}

// Relocate moves a chapter to req.OrderNumber, shifting the chapters in
// between by one slot.
func (s *Service) Relocate(ctx context.Context, tenantID string, req RelocateRequest) (*Chapter, error) {
	if strings.TrimSpace(req.ProjectID) == "" || strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidInput
	}

	unlock, err := s.lockProject(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	siblings, err := s.loadProject(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := Validate(siblings); err != nil {
		return nil, err
	}

	moved, updates, err := PlanRelocate(siblings, req.ID, req.OrderNumber)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return &moved, nil
	}

	var from int
	for _, ch := range siblings {
		if ch.ID == moved.ID {
			from = ch.OrderNumber
		}
	}

	if err := s.apply(ctx, tenantID, Batch{Updates: updates, Expect: SnapshotOf(req.ProjectID, siblings)}); err != nil {
		return nil, err
	}
	moved = s.stamped(updates[len(updates)-1])

	s.logger.Debug("chapter relocated",
		"tenant_id", tenantID, "project_id", moved.ProjectID, "chapter_id", moved.ID,
		"from", from, "order_number", moved.OrderNumber, "shifted", len(updates)-1)
	s.logActivity(ctx, tenantID, &moved, activity.TypeChapterMoved,
		fmt.Sprintf("moved chapter %s from %d to %d", moved.ID, from, moved.OrderNumber),
		map[string]any{"from": from, "to": moved.OrderNumber})

	return &moved, nil
}

// Remove deletes a chapter and moves every later chapter one slot earlier.
func (s *Service) Remove(ctx context.Context, tenantID, id string) (*Chapter, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}

	target, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockProject(ctx, tenantID, target.ProjectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	siblings, err := s.loadProject(ctx, tenantID, target.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := Validate(siblings); err != nil {
		return nil, err
	}

	removed, updates, err := PlanRemove(siblings, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, tenantID, Batch{
		Updates:  updates,
		DeleteID: removed.ID,
		Expect:   SnapshotOf(target.ProjectID, siblings),
	}); err != nil {
		return nil, err
	}

	s.logger.Debug("chapter removed",
		"tenant_id", tenantID, "project_id", removed.ProjectID, "chapter_id", removed.ID,
		"order_number", removed.OrderNumber, "shifted", len(updates))
	s.logActivity(ctx, tenantID, &removed, activity.TypeChapterRemoved,
		fmt.Sprintf("removed chapter %s from %d", removed.ID, removed.OrderNumber), nil)

	return &removed, nil
}

// Rename overwrites a chapter's title. A title equal to the default for the
// chapter's order number is treated as a default title by later moves.
func (s *Service) Rename(ctx context.Context, tenantID, id, title string) (*Chapter, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(title) == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockProject(ctx, tenantID, current.ProjectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock so the version matches what moves have written.
	current, err = s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Title = title
	batch := Batch{Updates: []Chapter{updated}}
	if err := s.apply(ctx, tenantID, batch); err != nil {
		return nil, err
	}
	updated = s.stamped(batch.Updates[0])

	s.logActivity(ctx, tenantID, &updated, activity.TypeChapterRenamed,
		fmt.Sprintf("renamed chapter %s", updated.ID),
		map[string]any{"from": current.Title, "to": updated.Title})

	return &updated, nil
}

// Normalize renumbers a project's chapters to 1..N without changing their
// relative order. It repairs data written before order numbers were enforced.
func (s *Service) Normalize(ctx context.Context, tenantID, projectID string) ([]Chapter, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidInput
	}

	unlock, err := s.lockProject(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	siblings, err := s.loadProject(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}

	updates := PlanNormalize(siblings)
	if len(updates) > 0 {
		if err := s.apply(ctx, tenantID, Batch{Updates: updates, Expect: SnapshotOf(projectID, siblings)}); err != nil {
			return nil, err
		}
		s.logger.Info("chapters renumbered", "tenant_id", tenantID, "project_id", projectID, "changed", len(updates))
	}

	byID := make(map[string]Chapter, len(updates))
	for _, ch := range updates {
		byID[ch.ID] = s.stamped(ch)
	}
	result := make([]Chapter, 0, len(siblings))
	for _, ch := range siblings {
		if updated, ok := byID[ch.ID]; ok {
			ch = updated
		}
		result = append(result, ch)
	}
	SortByOrder(result)
	return result, nil
}

// Get returns a chapter by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Chapter, error) {
	ch, err := s.chapters.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("getting chapter: %w", err)
	}
	return ch, nil
}

// ListByProject returns a project's chapters in order.
func (s *Service) ListByProject(ctx context.Context, tenantID, projectID string) ([]Chapter, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidInput
	}
	chapters, err := s.loadProject(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	SortByOrder(chapters)
	return chapters, nil
}

// List returns every chapter of the tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]Chapter, error) {
	chapters, err := s.chapters.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}
	return chapters, nil
}

// Search finds chapters in a project by title.
func (s *Service) Search(ctx context.Context, tenantID, projectID, query string, limit int) ([]Chapter, error) {
	if s.search == nil {
		return nil, fmt.Errorf("search repository not configured")
	}
	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(query) == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	chapters, err := s.search.Search(ctx, tenantID, projectID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chapters: %w", err)
	}
	return chapters, nil
}

func (s *Service) lockProject(ctx context.Context, tenantID, projectID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, tenantID+"/"+projectID)
	if err != nil {
		return nil, fmt.Errorf("locking project %s: %w", projectID, err)
	}
	return unlock, nil
}

func (s *Service) loadProject(ctx context.Context, tenantID, projectID string) ([]Chapter, error) {
	if _, err := s.projects.Get(ctx, tenantID, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}

	chapters, err := s.chapters.ListByProject(ctx, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}
	return chapters, nil
}

// apply writes a batch. The caller's context is checked first; once the
// write has started it is not canceled, so the batch commits or rolls back
// as a whole.
func (s *Service) apply(ctx context.Context, tenantID string, batch Batch) error {
	if batch.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	for i := range batch.Updates {
		batch.Updates[i].ModifiedAt = now
	}

	if err := s.chapters.Apply(context.WithoutCancel(ctx), tenantID, batch); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return ErrConflict
		case errors.Is(err, repository.ErrNotFound):
			return ErrChapterNotFound
		}
		return fmt.Errorf("applying chapter batch: %w", err)
	}
	return nil
}

// stamped returns ch as the store holds it after a successful apply.
func (s *Service) stamped(ch Chapter) Chapter {
	ch.Version++
	return ch
}

func (s *Service) logActivity(ctx context.Context, tenantID string, ch *Chapter, typ activity.ActivityType, summary string, details map[string]any) {
	if s.activities == nil {
		return
	}

	entry := &activity.ActivityEntry{
		ProjectID:    ch.ProjectID,
		ChapterID:    &ch.ID,
		ActivityType: typ,
		Summary:      summary,
		CreatedAt:    time.Now(),
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}

	if err := s.activities.Log(context.WithoutCancel(ctx), tenantID, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", typ, "chapter_id", ch.ID, "error", err)
	}
}
