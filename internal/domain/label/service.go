package label

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/ttsprep/internal/repository"
	"github.com/google/uuid"
)

// Service handles text block label operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new label service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a named label to a chapter.
func (s *Service) Create(ctx context.Context, chapterID, name string) (*Label, error) {
	if strings.TrimSpace(chapterID) == "" || strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	lbl := &Label{
		ID:        uuid.NewString(),
		ChapterID: chapterID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, lbl); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("creating label: %w", err)
	}
	return lbl, nil
}

// CreateDefault adds the Narration label to a freshly created chapter.
func (s *Service) CreateDefault(ctx context.Context, chapterID string) (*Label, error) {
	return s.Create(ctx, chapterID, DefaultName)
}

// List returns a chapter's labels in creation order.
func (s *Service) List(ctx context.Context, chapterID string) ([]Label, error) {
	if strings.TrimSpace(chapterID) == "" {
		return nil, ErrInvalidInput
	}
	labels, err := s.repo.ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	return labels, nil
}
