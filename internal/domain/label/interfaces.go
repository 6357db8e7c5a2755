package label

import "context"

// Repository provides persistence for text block labels.
type Repository interface {
	Create(ctx context.Context, lbl *Label) error
	ListByChapter(ctx context.Context, chapterID string) ([]Label, error)
}
