// CLAUDE:SUMMARY Export history CRUD: record delivered artifacts, fetch, list by page, delete, prune.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hazyhaar/domforge/dbopen"
	"github.com/hazyhaar/domforge/internal/sink"
)

// Export is one stored artifact.
type Export struct {
	ID          string `json:"id"`
	PageID      string `json:"page_id,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
	Title       string `json:"title"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content,omitempty"`
	Elements    int    `json:"elements"`
	Nodes       int    `json:"nodes"`
	CreatedAt   int64  `json:"created_at"`
}

// FromArtifact converts a delivered artifact into a row.
func FromArtifact(a sink.Artifact) *Export {
	created := a.CreatedAt.UnixMilli()
	if a.CreatedAt.IsZero() {
		created = time.Now().UnixMilli()
	}
	return &Export{
		ID: a.ID, PageID: a.PageID, PageURL: a.PageURL, Title: a.Title,
		Format: a.Format, Filename: a.Filename, ContentType: a.ContentType,
		Content: a.Content, Elements: a.Elements, Nodes: a.Nodes, CreatedAt: created,
	}
}

// Deliver records a as an export, so a Store can sit in a sink router.
func (s *Store) Deliver(ctx context.Context, a sink.Artifact) error {
	return s.InsertExport(ctx, FromArtifact(a))
}

// InsertExport inserts e.
func (s *Store) InsertExport(ctx context.Context, e *Export) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO exports
			(id, page_id, page_url, title, format, filename, content_type, content, elements, nodes, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.PageID, e.PageURL, e.Title, e.Format, e.Filename, e.ContentType,
		e.Content, e.Elements, e.Nodes, e.CreatedAt,
	)
	return err
}

// GetExport returns the export with id, or nil if there is none.
func (s *Store) GetExport(ctx context.Context, id string) (*Export, error) {
	e := &Export{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, page_id, page_url, title, format, filename, content_type, content, elements, nodes, created_at
		FROM exports WHERE id = ?`, id).Scan(
		&e.ID, &e.PageID, &e.PageURL, &e.Title, &e.Format, &e.Filename, &e.ContentType,
		&e.Content, &e.Elements, &e.Nodes, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListExports returns the newest exports first, without content. A
// non-empty pageURL restricts the list to that page.
func (s *Store) ListExports(ctx context.Context, pageURL string, limit int) ([]*Export, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, page_id, page_url, title, format, filename, content_type, elements, nodes, created_at
	          FROM exports`
	args := []any{}
	if pageURL != "" {
		query += ` WHERE page_url = ?`
		args = append(args, pageURL)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Export
	for rows.Next() {
		e := &Export{}
		if err := rows.Scan(&e.ID, &e.PageID, &e.PageURL, &e.Title, &e.Format, &e.Filename,
			&e.ContentType, &e.Elements, &e.Nodes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteExport removes an export. Deleting a missing id is not an error.
func (s *Store) DeleteExport(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM exports WHERE id = ?`, id)
	return err
}

// PruneExports keeps the newest keep exports and deletes the rest. It
// returns the number of rows removed.
func (s *Store) PruneExports(ctx context.Context, keep int) (int64, error) {
	var removed int64
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM exports WHERE id NOT IN (
				SELECT id FROM exports ORDER BY created_at DESC, id DESC LIMIT ?
			)`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}
