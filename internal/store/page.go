// CLAUDE:SUMMARY Page registry CRUD: pages (url, selectors, stealth level) converted on batch runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Page is a registered page.
type Page struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Selectors    []string `json:"selectors"`
	StealthLevel string   `json:"stealth_level"`
	Title        string   `json:"title,omitempty"`
	Format       string   `json:"format"`
	Status       string   `json:"status"` // active | paused
	UpdatedAt    int64    `json:"updated_at"`
}

// UpsertPage inserts or replaces p.
func (s *Store) UpsertPage(ctx context.Context, p *Page) error {
	sels, err := json.Marshal(p.Selectors)
	if err != nil {
		return err
	}
	if p.StealthLevel == "" {
		p.StealthLevel = "auto"
	}
	if p.Format == "" {
		p.Format = "json"
	}
	if p.Status == "" {
		p.Status = "active"
	}
	p.UpdatedAt = time.Now().UnixMilli()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO pages (id, url, selectors, stealth_level, title, format, status, updated_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url, selectors = excluded.selectors,
			stealth_level = excluded.stealth_level, title = excluded.title,
			format = excluded.format, status = excluded.status, updated_at = excluded.updated_at`,
		p.ID, p.URL, string(sels), p.StealthLevel, p.Title, p.Format, p.Status, p.UpdatedAt,
	)
	return err
}

// GetPage returns the page with id, or nil.
func (s *Store) GetPage(ctx context.Context, id string) (*Page, error) {
	p := &Page{}
	var sels string
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, url, selectors, stealth_level, title, format, status, updated_at
		FROM pages WHERE id = ?`, id).Scan(
		&p.ID, &p.URL, &sels, &p.StealthLevel, &p.Title, &p.Format, &p.Status, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(sels), &p.Selectors)
	return p, nil
}

// ListPages returns pages ordered by id, optionally only active ones.
func (s *Store) ListPages(ctx context.Context, activeOnly bool) ([]*Page, error) {
	query := `SELECT id, url, selectors, stealth_level, title, format, status, updated_at FROM pages`
	if activeOnly {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Page
	for rows.Next() {
		p := &Page{}
		var sels string
		if err := rows.Scan(&p.ID, &p.URL, &sels, &p.StealthLevel, &p.Title, &p.Format, &p.Status, &p.UpdatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(sels), &p.Selectors)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPageStatus changes a page's status.
func (s *Store) SetPageStatus(ctx context.Context, id, status string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE pages SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UnixMilli(), id)
	return err
}

// DeletePage removes a page.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}
