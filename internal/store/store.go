// CLAUDE:SUMMARY SQLite database handle for domforge: opens the DB with dbopen pragmas and applies the schema.
// Package store keeps the export history and the page registry in SQLite.
package store

import (
	"database/sql"

	"github.com/hazyhaar/domforge/dbopen"
)

// Schema is the complete DDL.
const Schema = `
-- Export history: one row per delivered artifact
CREATE TABLE IF NOT EXISTS exports (
    id           TEXT PRIMARY KEY,
    page_id      TEXT NOT NULL DEFAULT '',
    page_url     TEXT NOT NULL DEFAULT '',
    title        TEXT NOT NULL DEFAULT '',
    format       TEXT NOT NULL,
    filename     TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    content      TEXT NOT NULL,
    elements     INTEGER NOT NULL DEFAULT 0,
    nodes        INTEGER NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_exports_page ON exports(page_url);

-- Page registry: pages converted on every batch run
CREATE TABLE IF NOT EXISTS pages (
    id            TEXT PRIMARY KEY,
    url           TEXT NOT NULL,
    selectors     TEXT NOT NULL DEFAULT '[]',
    stealth_level TEXT NOT NULL DEFAULT 'auto',
    title         TEXT NOT NULL DEFAULT '',
    format        TEXT NOT NULL DEFAULT 'json',
    status        TEXT NOT NULL DEFAULT 'active',
    updated_at    INTEGER NOT NULL
);
`

// Store is the domforge database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the database at path and applies Schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	all := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, all...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
