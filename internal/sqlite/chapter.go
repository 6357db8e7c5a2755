package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/repository"
)

const chapterColumns = `id, tenant_id, project_id, title, order_number, version, created_at, modified_at`

// ChapterRepository implements chapter.Repository for SQLite
type ChapterRepository struct {
	db *DB
}

// NewChapterRepository creates a new ChapterRepository
func NewChapterRepository(db *DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// Create inserts a new chapter after the last one of its project. The insert
// only happens while ch.OrderNumber is one past the project's highest order
// number; otherwise another writer got there first and ErrConflict is returned.
func (r *ChapterRepository) Create(ctx context.Context, tenantID string, ch *chapter.Chapter) error {
	query := `
		INSERT INTO chapters (` + chapterColumns + `)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?
		WHERE (
			SELECT COALESCE(MAX(order_number), 0)
			FROM chapters
			WHERE tenant_id = ? AND project_id = ?
		) = ?
	`

	version := ch.Version
	if version == 0 {
		version = 1
	}

	result, err := r.db.ExecContext(ctx, query,
		ch.ID,
		tenantID,
		ch.ProjectID,
		ch.Title,
		ch.OrderNumber,
		version,
		ch.CreatedAt,
		ch.ModifiedAt,
		tenantID,
		ch.ProjectID,
		ch.OrderNumber-1,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return repository.ErrForeignKeyViolation
		case isUniqueViolation(err):
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrConflict
	}

	ch.TenantID = tenantID
	ch.Version = version
	return nil
}

// Get retrieves a chapter by ID
func (r *ChapterRepository) Get(ctx context.Context, tenantID, id string) (*chapter.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE id = ? AND tenant_id = ?`

	ch, err := scanChapter(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return ch, nil
}

// List returns every chapter of a tenant grouped by project
func (r *ChapterRepository) List(ctx context.Context, tenantID string) ([]chapter.Chapter, error) {
	query := `
		SELECT ` + chapterColumns + `
		FROM chapters
		WHERE tenant_id = ?
		ORDER BY project_id, order_number
	`
	return r.query(ctx, query, tenantID)
}

// ListByProject returns a project's chapters ordered by order number
func (r *ChapterRepository) ListByProject(ctx context.Context, tenantID, projectID string) ([]chapter.Chapter, error) {
	query := `
		SELECT ` + chapterColumns + `
		FROM chapters
		WHERE tenant_id = ? AND project_id = ?
		ORDER BY order_number
	`
	return r.query(ctx, query, tenantID, projectID)
}

// Apply writes a batch in one transaction.
//
// Updates are matched on the version they carry, and batch.Expect, when set,
// must still describe the project's chapter list. Order numbers are written
// in two steps, first negated and then flipped back, so that
// UNIQUE(project_id, order_number) holds after every statement even while
// chapters trade places.
func (r *ChapterRepository) Apply(ctx context.Context, tenantID string, batch chapter.Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if batch.Expect != nil {
		if err := checkSnapshot(ctx, tx, tenantID, batch.Expect); err != nil {
			return err
		}
	}

	if batch.DeleteID != "" {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM chapters WHERE id = ? AND tenant_id = ?`, batch.DeleteID, tenantID)
		if err != nil {
			return fmt.Errorf("failed to delete chapter: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return repository.ErrNotFound
		}
	}

	if len(batch.Updates) > 0 {
		update := `
			UPDATE chapters
			SET order_number = ?, title = ?, version = version + 1, modified_at = ?
			WHERE id = ? AND tenant_id = ? AND version = ?
		`
		ids := make([]any, 0, len(batch.Updates)+1)
		ids = append(ids, tenantID)
		for _, ch := range batch.Updates {
			result, err := tx.ExecContext(ctx, update,
				-ch.OrderNumber, ch.Title, ch.ModifiedAt, ch.ID, tenantID, ch.Version)
			if err != nil {
				if isUniqueViolation(err) {
					return repository.ErrConflict
				}
				return fmt.Errorf("failed to update chapter %s: %w", ch.ID, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if n == 0 {
				return staleOrMissing(ctx, tx, tenantID, ch.ID)
			}
			ids = append(ids, ch.ID)
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch.Updates)), ",")
		flip := `
			UPDATE chapters
			SET order_number = -order_number
			WHERE tenant_id = ? AND order_number < 0 AND id IN (` + placeholders + `)
		`
		if _, err := tx.ExecContext(ctx, flip, ids...); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("failed to renumber chapters: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func checkSnapshot(ctx context.Context, tx *sql.Tx, tenantID string, want *chapter.Snapshot) error {
	var count, maxOrder int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(order_number), 0)
		FROM chapters
		WHERE tenant_id = ? AND project_id = ?
	`, tenantID, want.ProjectID).Scan(&count, &maxOrder)
	if err != nil {
		return fmt.Errorf("failed to read project %s: %w", want.ProjectID, err)
	}
	if count != want.Count || maxOrder != want.MaxOrder {
		return repository.ErrConflict
	}
	return nil
}

func staleOrMissing(ctx context.Context, tx *sql.Tx, tenantID, id string) error {
	var exists int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM chapters WHERE id = ? AND tenant_id = ?`, id, tenantID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check chapter %s: %w", id, err)
	}
	return repository.ErrConflict
}

func (r *ChapterRepository) query(ctx context.Context, query string, args ...any) ([]chapter.Chapter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []chapter.Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, *ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chapter rows: %w", err)
	}

	return chapters, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChapter(row rowScanner) (*chapter.Chapter, error) {
	var ch chapter.Chapter
	err := row.Scan(
		&ch.ID,
		&ch.TenantID,
		&ch.ProjectID,
		&ch.Title,
		&ch.OrderNumber,
		&ch.Version,
		&ch.CreatedAt,
		&ch.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
