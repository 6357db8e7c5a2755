package sqlite

import (
	"context"
	"fmt"

	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/repository"
)

// LabelRepository implements label.Repository for SQLite
type LabelRepository struct {
	db *DB
}

// NewLabelRepository creates a new LabelRepository
func NewLabelRepository(db *DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create inserts a label
func (r *LabelRepository) Create(ctx context.Context, lbl *label.Label) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO text_block_labels (id, chapter_id, name, created_at) VALUES (?, ?, ?, ?)`,
		lbl.ID, lbl.ChapterID, lbl.Name, lbl.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create label: %w", err)
	}
	return nil
}

// ListByChapter returns a chapter's labels in creation order
func (r *LabelRepository) ListByChapter(ctx context.Context, chapterID string) ([]label.Label, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chapter_id, name, created_at
		FROM text_block_labels
		WHERE chapter_id = ?
		ORDER BY created_at, id
	`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []label.Label
	for rows.Next() {
		var lbl label.Label
		if err := rows.Scan(&lbl.ID, &lbl.ChapterID, &lbl.Name, &lbl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, lbl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating label rows: %w", err)
	}

	return labels, nil
}
