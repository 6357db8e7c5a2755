package label_test

import (
	"context"
	"testing"

	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/repository"
	"github.com/ganot/ttsprep/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLabelService_CreateDefault(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.LabelRepository{}
	repo.On("Create", ctx, mock.MatchedBy(func(l *label.Label) bool {
		return l.ChapterID == "ch1" && l.Name == label.DefaultName && l.ID != ""
	})).Return(nil)

	svc := label.NewService(repo, nil)
	lbl, err := svc.CreateDefault(ctx, "ch1")
	require.NoError(t, err)
	require.Equal(t, "Narration", lbl.Name)
	repo.AssertExpectations(t)
}

func TestLabelService_CreateMissingChapter(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.LabelRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrForeignKeyViolation)

	svc := label.NewService(repo, nil)
	_, err := svc.Create(ctx, "missing", "Villain")
	require.ErrorIs(t, err, label.ErrChapterNotFound)
}

func TestLabelService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := label.NewService(&mocks.LabelRepository{}, nil)

	_, err := svc.Create(ctx, "ch1", "  ")
	require.ErrorIs(t, err, label.ErrInvalidInput)
	_, err = svc.List(ctx, "")
	require.ErrorIs(t, err, label.ErrInvalidInput)
}
