package chapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	projectdomain "github.com/ganot/ttsprep/internal/domain/project"
	"github.com/ganot/ttsprep/internal/repository"
	"github.com/ganot/ttsprep/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceMocks struct {
	chapters   *mocks.ChapterRepository
	projects   *mocks.ProjectRepository
	labels     *mocks.LabelService
	activities *mocks.ActivityRepository
}

func newTestService() (*chapter.Service, serviceMocks) {
	m := serviceMocks{
		chapters:   &mocks.ChapterRepository{},
		projects:   &mocks.ProjectRepository{},
		labels:     &mocks.LabelService{},
		activities: &mocks.ActivityRepository{},
	}
	svc := chapter.NewService(m.chapters, m.projects, m.labels, m.activities, nil, nil, nil)
	return svc, m
}

func (m serviceMocks) withProject(ctx context.Context, tenantID, projectID string, chapters []chapter.Chapter) {
	m.projects.On("Get", ctx, tenantID, projectID).Return(&projectdomain.Project{ID: projectID, TenantID: tenantID}, nil)
	m.chapters.On("ListByProject", ctx, tenantID, projectID).Return(chapters, nil)
}

func versioned(chapters []chapter.Chapter) []chapter.Chapter {
	for i := range chapters {
		chapters[i].Version = 1
	}
	return chapters
}

func TestChapterService_AppendToEmptyProject(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", nil)
	m.chapters.On("Create", mock.Anything, tenantID, mock.MatchedBy(func(ch *chapter.Chapter) bool {
		return ch.OrderNumber == 1 && ch.Title == "Chapter 1" && ch.ProjectID == "proj1"
	})).Return(nil)
	m.labels.On("CreateDefault", mock.Anything, mock.Anything).Return(&label.Label{Name: label.DefaultName}, nil)
	m.activities.On("Log", mock.Anything, tenantID, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeChapterCreated && e.ProjectID == "proj1"
	})).Return(nil)

	ch, err := svc.Append(ctx, tenantID, chapter.AppendRequest{ProjectID: "proj1"})
	require.NoError(t, err)
	require.NotEmpty(t, ch.ID)
	require.Equal(t, 1, ch.OrderNumber)
	require.Equal(t, "Chapter 1", ch.Title)
	require.Equal(t, int64(1), ch.Version)

	m.labels.AssertCalled(t, "CreateDefault", mock.Anything, ch.ID)
	m.activities.AssertExpectations(t)
}

func TestChapterService_AppendAfterHighest(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", versioned(project(5)))
	m.chapters.On("Create", mock.Anything, tenantID, mock.Anything).Return(nil)
	m.labels.On("CreateDefault", mock.Anything, mock.Anything).Return(&label.Label{}, nil)
	m.activities.On("Log", mock.Anything, tenantID, mock.Anything).Return(nil)

	ch, err := svc.Append(ctx, tenantID, chapter.AppendRequest{ProjectID: "proj1", Title: "Epilogue"})
	require.NoError(t, err)
	require.Equal(t, 6, ch.OrderNumber)
	require.Equal(t, "Epilogue", ch.Title)

	m.chapters.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestChapterService_AppendUnknownProject(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.projects.On("Get", ctx, tenantID, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.Append(ctx, tenantID, chapter.AppendRequest{ProjectID: "ghost"})
	require.ErrorIs(t, err, projectdomain.ErrProjectNotFound)

	_, err = svc.Append(ctx, tenantID, chapter.AppendRequest{ProjectID: " "})
	require.ErrorIs(t, err, chapter.ErrInvalidInput)
}

func TestChapterService_AppendRollsBackWhenLabelFails(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"
	labelErr := errors.New("label store down")

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", nil)
	m.chapters.On("Create", mock.Anything, tenantID, mock.Anything).Return(nil)
	m.labels.On("CreateDefault", mock.Anything, mock.Anything).Return(nil, labelErr)
	m.chapters.On("Apply", mock.Anything, tenantID, mock.MatchedBy(func(b chapter.Batch) bool {
		return b.DeleteID != "" && len(b.Updates) == 0
	})).Return(nil)

	_, err := svc.Append(ctx, tenantID, chapter.AppendRequest{ProjectID: "proj1"})
	require.ErrorIs(t, err, labelErr)
	m.chapters.AssertExpectations(t)
	m.activities.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything)
}

func TestChapterService_RelocateEarlier(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", versioned(project(5)))

	var written chapter.Batch
	m.chapters.On("Apply", mock.Anything, tenantID, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(2).(chapter.Batch) }).
		Return(nil)
	m.activities.On("Log", mock.Anything, tenantID, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeChapterMoved && e.Details == `{"from":4,"to":2}`
	})).Return(nil)

	moved, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "c4", OrderNumber: 2})
	require.NoError(t, err)
	require.Equal(t, 2, moved.OrderNumber)
	require.Equal(t, "Chapter 2", moved.Title)
	require.Equal(t, int64(2), moved.Version)

	require.Empty(t, written.DeleteID)
	require.Len(t, written.Updates, 3)
	got := map[string]int{}
	for _, ch := range written.Updates {
		got[ch.ID] = ch.OrderNumber
		require.Equal(t, int64(1), ch.Version, "updates carry the version they were read at")
		require.False(t, ch.ModifiedAt.IsZero())
	}
	require.Equal(t, map[string]int{"c2": 3, "c3": 4, "c4": 2}, got)
	m.activities.AssertExpectations(t)
}

func TestChapterService_RelocateInvalidTarget(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", versioned(project(3)))

	for _, target := range []int{0, 4} {
		_, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "c1", OrderNumber: target})
		require.ErrorIs(t, err, chapter.ErrInvalidTarget)
	}

	_, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "other", OrderNumber: 1})
	require.ErrorIs(t, err, chapter.ErrChapterNotFound)

	m.chapters.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestChapterService_RelocateSameSlotWritesNothing(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", versioned(project(3)))

	moved, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "c2", OrderNumber: 2})
	require.NoError(t, err)
	require.Equal(t, 2, moved.OrderNumber)
	require.Equal(t, "Chapter 2", moved.Title)
	m.chapters.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
	m.activities.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything)
}

func TestChapterService_RelocateRejectsGappedProject(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	gapped := versioned(project(3))
	gapped[2].OrderNumber = 7

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", gapped)

	_, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "c1", OrderNumber: 2})
	require.ErrorIs(t, err, chapter.ErrInconsistentOrder)
}

func TestChapterService_RelocateConflict(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", versioned(project(3)))
	m.chapters.On("Apply", mock.Anything, tenantID, mock.Anything).Return(repository.ErrConflict)

	_, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "c3", OrderNumber: 1})
	require.ErrorIs(t, err, chapter.ErrConflict)
}

func TestChapterService_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"
	storeErr := errors.New("disk I/O error")

	svc, m := newTestService()
	m.projects.On("Get", ctx, tenantID, "proj1").Return(&projectdomain.Project{ID: "proj1"}, nil)
	m.chapters.On("ListByProject", ctx, tenantID, "proj1").Return(nil, storeErr)

	_, err := svc.Relocate(ctx, tenantID, chapter.RelocateRequest{ProjectID: "proj1", ID: "c1", OrderNumber: 1})
	require.ErrorIs(t, err, storeErr)
}

func TestChapterService_CanceledBeforeIO(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc, m := newTestService()
	_, err := svc.Relocate(ctx, "tenant1", chapter.RelocateRequest{ProjectID: "proj1", ID: "c1", OrderNumber: 1})
	require.ErrorIs(t, err, context.Canceled)

	m.projects.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	m.chapters.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestChapterService_Remove(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	chapters := versioned(project(4))
	target := chapters[1]

	svc, m := newTestService()
	m.chapters.On("Get", ctx, tenantID, "c2").Return(&target, nil)
	m.withProject(ctx, tenantID, "proj1", chapters)

	var written chapter.Batch
	m.chapters.On("Apply", mock.Anything, tenantID, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(2).(chapter.Batch) }).
		Return(nil)
	m.activities.On("Log", mock.Anything, tenantID, mock.Anything).Return(nil)

	removed, err := svc.Remove(ctx, tenantID, "c2")
	require.NoError(t, err)
	require.Equal(t, "c2", removed.ID)

	require.Equal(t, "c2", written.DeleteID)
	require.Equal(t, []string{"c3", "c4"}, ids(written.Updates))
	require.Equal(t, []string{"Chapter 2", "Chapter 3"}, titles(written.Updates))
	require.Equal(t, &chapter.Snapshot{ProjectID: "proj1", Count: 4, MaxOrder: 4}, written.Expect)
}

func TestChapterService_RemoveRejectsGappedProject(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	gapped := versioned(project(2))
	gapped[1].OrderNumber = 3
	target := gapped[0]

	svc, m := newTestService()
	m.chapters.On("Get", ctx, tenantID, "c1").Return(&target, nil)
	m.withProject(ctx, tenantID, "proj1", gapped)

	_, err := svc.Remove(ctx, tenantID, "c1")
	require.ErrorIs(t, err, chapter.ErrInconsistentOrder)
	m.chapters.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestChapterService_RemoveNotFound(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	svc, m := newTestService()
	m.chapters.On("Get", ctx, tenantID, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.Remove(ctx, tenantID, "ghost")
	require.ErrorIs(t, err, chapter.ErrChapterNotFound)
}

func TestChapterService_Rename(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	current := chapter.Chapter{ID: "c1", ProjectID: "proj1", Title: "Chapter 1", OrderNumber: 1, Version: 3}

	svc, m := newTestService()
	m.chapters.On("Get", ctx, tenantID, "c1").Return(&current, nil)
	m.chapters.On("Apply", mock.Anything, tenantID, mock.MatchedBy(func(b chapter.Batch) bool {
		return len(b.Updates) == 1 && b.Updates[0].Title == "Prologue" && b.Updates[0].Version == 3
	})).Return(nil)
	m.activities.On("Log", mock.Anything, tenantID, mock.Anything).Return(nil)

	updated, err := svc.Rename(ctx, tenantID, "c1", "Prologue")
	require.NoError(t, err)
	require.Equal(t, "Prologue", updated.Title)
	require.Equal(t, 1, updated.OrderNumber)
	require.Equal(t, int64(4), updated.Version)
	m.chapters.AssertExpectations(t)

	_, err = svc.Rename(ctx, tenantID, "c1", "   ")
	require.ErrorIs(t, err, chapter.ErrInvalidInput)
}

func TestChapterService_Normalize(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	gapped := versioned(project(3))
	gapped[1].OrderNumber = 5
	gapped[2].OrderNumber = 8

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", gapped)
	m.chapters.On("Apply", mock.Anything, tenantID, mock.Anything).Return(nil)

	result, err := svc.Normalize(ctx, tenantID, "proj1")
	require.NoError(t, err)
	require.NoError(t, chapter.Validate(result))
	require.Equal(t, []string{"c1", "c2", "c3"}, ids(result))
	// c2 and c3 carried default titles for slots 2 and 3, not for 5 and 8.
	require.Equal(t, []string{"Chapter 1", "Chapter 2", "Chapter 3"}, titles(result))
}

func TestChapterService_ListByProjectSorted(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	shuffled := []chapter.Chapter{project(3)[2], project(3)[0], project(3)[1]}

	svc, m := newTestService()
	m.withProject(ctx, tenantID, "proj1", shuffled)

	chapters, err := svc.ListByProject(ctx, tenantID, "proj1")
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2", "c3"}, ids(chapters))
}

func TestChapterService_Search(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	search := &mocks.SearchRepository{}
	search.On("Search", ctx, tenantID, "proj1", "storm", 20).Return([]chapter.Chapter{{ID: "c3"}}, nil)

	svc := chapter.NewService(&mocks.ChapterRepository{}, &mocks.ProjectRepository{}, nil, nil, search, nil, nil)
	found, err := svc.Search(ctx, tenantID, "proj1", "storm", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"c3"}, ids(found))

	_, err = svc.Search(ctx, tenantID, "proj1", "", 0)
	require.ErrorIs(t, err, chapter.ErrInvalidInput)
}
