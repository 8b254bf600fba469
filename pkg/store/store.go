// Package store persists translation rows and annotations in sqlite. It is
// the local stand-in for the hosted backend's tables: the importer writes
// translation rows here, and the validator reads existing numbers back for
// duplicate detection.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id            TEXT PRIMARY KEY,
	language_code TEXT NOT NULL,
	unit_type     TEXT NOT NULL CHECK (unit_type IN ('article', 'recital')),
	unit_number   INTEGER NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL,
	created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	UNIQUE (language_code, unit_type, unit_number)
);

CREATE TABLE IF NOT EXISTS annotations (
	id              TEXT PRIMARY KEY,
	content_type    TEXT NOT NULL,
	content_id      TEXT NOT NULL,
	selected_text   TEXT NOT NULL,
	start_offset    INTEGER NOT NULL,
	end_offset      INTEGER NOT NULL,
	highlight_color TEXT NOT NULL,
	comment         TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS annotation_tags (
	annotation_id TEXT NOT NULL REFERENCES annotations(id) ON DELETE CASCADE,
	tag_id        TEXT NOT NULL,
	PRIMARY KEY (annotation_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_annotations_content
	ON annotations (content_type, content_id);
`

// Store is a sqlite-backed store for translations and annotations.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the sqlite database at path and applies
// the schema. Use ":memory:" for an in-memory database in tests. A nil
// logger defaults to a no-op logger.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Debug("store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
