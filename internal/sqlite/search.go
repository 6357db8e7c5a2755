package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganot/ttsprep/internal/domain/chapter"
)

// SearchRepository implements chapter.SearchRepository for SQLite
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search performs a full-text search over chapter titles, best match first
func (r *SearchRepository) Search(ctx context.Context, tenantID, projectID, query string, limit int) ([]chapter.Chapter, error) {
	sqlQuery := `
		SELECT c.id, c.tenant_id, c.project_id, c.title, c.order_number, c.version, c.created_at, c.modified_at
		FROM chapters_fts
		JOIN chapters c ON c.rowid = chapters_fts.rowid
		WHERE c.tenant_id = ? AND c.project_id = ? AND chapters_fts MATCH ?
		ORDER BY chapters_fts.rank, c.order_number
	`
	args := []any{tenantID, projectID, ftsQuery(query)}

	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chapters: %w", err)
	}
	defer rows.Close()

	var results []chapter.Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, *ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

// ftsQuery quotes each term so user input never parses as FTS5 syntax.
// Terms are ANDed and the last one matches as a prefix.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	if len(terms) > 0 {
		terms[len(terms)-1] += "*"
	}
	return strings.Join(terms, " ")
}
