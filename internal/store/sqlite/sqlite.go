// Package sqlite is the single-file bookmark gateway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created
	ON bookmarks (owner_id, created_at DESC, id DESC);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is a database/sql gateway over modernc.org/sqlite.
type Store struct {
	db   *sql.DB
	opts store.Options
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" is accepted for tests.
func Open(ctx context.Context, path string, opts ...store.Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: pragmas are per-connection and ":memory:" is per-connection too.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	return &Store{db: db, opts: store.Apply(opts...)}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Create(ctx context.Context, ownerID, title, url string) (*domain.Bookmark, error) {
	b := s.opts.NewBookmark(ownerID, title, url)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, owner_id, title, url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.Title, b.URL, b.CreatedAt.UnixMilli(), b.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, domain.NewStoreError("create", err)
	}
	return b, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, url, created_at, updated_at FROM bookmarks
		 WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, domain.NewStoreError("list", err)
	}
	defer rows.Close()

	bookmarks := []*domain.Bookmark{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, domain.NewStoreError("list", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list", err)
	}
	return bookmarks, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, url, created_at, updated_at FROM bookmarks WHERE id = ?`, id)

	b, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("find", err)
	}
	return b, nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return domain.NewStoreError("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStoreError("delete", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.Bookmark, error) {
	var (
		b                domain.Bookmark
		created, updated int64
	)
	if err := r.Scan(&b.ID, &b.OwnerID, &b.Title, &b.URL, &created, &updated); err != nil {
		return nil, err
	}
	b.CreatedAt = time.UnixMilli(created).UTC()
	b.UpdatedAt = time.UnixMilli(updated).UTC()
	return &b, nil
}
