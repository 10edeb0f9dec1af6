// Package diskcache persists raw file content across process restarts,
// keyed by (path, size, mtime), so a cold Load() can skip re-reading files
// that have not changed since the last run. Extraction still runs over the
// cached content; no extracted entities are stored.
package diskcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite database storing one row per indexed file.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) a cache database at path.
func Open(path string) (*Cache, error) {
	if path == "" {
		return nil, errors.New("diskcache: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("diskcache: create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("diskcache: open: %w", err)
	}
	c := &Cache{db: db}
	if err := c.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) ensureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS files (
			path       TEXT PRIMARY KEY,
			size       INTEGER NOT NULL,
			mtime_unix INTEGER NOT NULL,
			content    TEXT NOT NULL
		);
	`)
	return err
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Lookup returns the cached content for path if its recorded size and
// mtime still match, per the cache key (path, size, mtime).
func (c *Cache) Lookup(ctx context.Context, path string, size int64, mtime time.Time) (string, bool) {
	row := c.db.QueryRowContext(ctx, `SELECT size, mtime_unix, content FROM files WHERE path = ?`, path)
	var gotSize, gotMtime int64
	var content string
	if err := row.Scan(&gotSize, &gotMtime, &content); err != nil {
		return "", false
	}
	if gotSize != size || gotMtime != mtime.Unix() {
		return "", false
	}
	return content, true
}

// Store records path's content keyed by its current size and mtime,
// replacing any prior entry.
func (c *Cache) Store(ctx context.Context, path string, size int64, mtime time.Time, content string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO files (path, size, mtime_unix, content) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET size = excluded.size, mtime_unix = excluded.mtime_unix, content = excluded.content
	`, path, size, mtime.Unix(), content)
	return err
}

// Forget removes path's entry, used when a file is deleted from the vault.
func (c *Cache) Forget(ctx context.Context, path string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	return err
}

// Paths returns every path currently cached, used to detect deletions
// between runs (a path present in the cache but absent from a fresh
// filesystem walk has been removed from the vault).
func (c *Cache) Paths(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
