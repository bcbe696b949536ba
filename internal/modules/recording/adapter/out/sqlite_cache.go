package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airpulse/internal/modules/recording/domain"
	recordingout "airpulse/internal/modules/recording/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(dbPath string) (recordingout.Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	cache := &SQLiteCache{db: db}
	if err := cache.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

func (c *SQLiteCache) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS recordings_cache (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  url TEXT,
  duration REAL NOT NULL,
  created_at TEXT
);
CREATE TABLE IF NOT EXISTS recordings_sync (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  synced_at TEXT NOT NULL
);
`
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create recordings_cache table: %w", err)
	}
	return nil
}

// Replace swaps the whole projection in one transaction.
func (c *SQLiteCache) Replace(ctx context.Context, recordings []domain.Recording, syncedAt time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM recordings_cache`); err != nil {
		return fmt.Errorf("reset recordings cache: %w", err)
	}
	const stmt = `
INSERT INTO recordings_cache (id, position, title, url, duration, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  position=excluded.position,
  title=excluded.title,
  url=excluded.url,
  duration=excluded.duration,
  created_at=excluded.created_at;
`
	for pos, rec := range recordings {
		if _, err := tx.ExecContext(ctx, stmt, rec.ID, pos, rec.Title, rec.URL, rec.Duration, rec.CreatedAt); err != nil {
			return fmt.Errorf("cache recording %s: %w", rec.ID, err)
		}
	}
	// The stamp lives apart from the rows so an empty listing still counts
	// as synced.
	const mark = `
INSERT INTO recordings_sync (id, synced_at) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET synced_at=excluded.synced_at;
`
	if _, err := tx.ExecContext(ctx, mark, syncedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamp recordings cache: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recordings cache: %w", err)
	}
	return nil
}

// List returns the last projected listing. A zero time means no listing was
// ever synced.
func (c *SQLiteCache) List(ctx context.Context) ([]domain.Recording, time.Time, error) {
	var syncedAt time.Time
	var stamp string
	err := c.db.QueryRowContext(ctx, `SELECT synced_at FROM recordings_sync WHERE id = 1`).Scan(&stamp)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, time.Time{}, nil
	case err != nil:
		return nil, time.Time{}, fmt.Errorf("query recordings sync stamp: %w", err)
	}
	syncedAt, err = time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse recordings sync stamp %q: %w", stamp, err)
	}

	rows, err := c.db.QueryContext(ctx, `SELECT id, title, url, duration, created_at FROM recordings_cache ORDER BY position`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query recordings cache: %w", err)
	}
	defer rows.Close()

	out := []domain.Recording{}
	for rows.Next() {
		var (
			rec       domain.Recording
			url       sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &url, &rec.Duration, &createdAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan cached recording: %w", err)
		}
		rec.URL = url.String
		rec.CreatedAt = createdAt.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate recordings cache: %w", err)
	}
	return out, syncedAt, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
