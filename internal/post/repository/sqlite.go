package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/aiagents/collab-hub/internal/common/db"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/post/domain"
)

const createPostsTableSQLite = `
CREATE TABLE IF NOT EXISTS posts (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL,
    author     TEXT NOT NULL,
    author_id  TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

var postColumns = []string{"id", "title", "content", "author", "author_id", "created_at"}

// SQLiteStore persists posts in an embedded database file. Each create is a
// single INSERT; existing rows are never rewritten.
type SQLiteStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	log     *logger.Logger
}

func OpenSQLiteStore(ctx context.Context, path string, log *logger.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create posts db directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open posts db: %w", err)
	}
	// a single writer keeps AUTOINCREMENT order equal to append order
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, createPostsTableSQLite); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}

	return &SQLiteStore{
		db:      conn,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(conn),
		log:     log,
	}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, post domain.Post) error {
	start := time.Now()
	err := db.RetryWithBackoff(ctx, s.log, db.BackendSQLite, db.DefaultRetryConfig, func(ctx context.Context) error {
		_, err := s.builder.
			Insert("posts").
			Columns(postColumns...).
			Values(post.ID, post.Title, post.Content, post.Author, post.AuthorID, post.CreatedAt.UTC().Format(time.RFC3339Nano)).
			ExecContext(ctx)
		return err
	})
	if db.IsUniqueViolation(err) {
		_ = db.HandleExecError(db.BackendSQLite, err, "append post", start)
		return commonerrors.ErrDuplicateID
	}
	return db.HandleExecError(db.BackendSQLite, err, "append post", start)
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post

	start := time.Now()
	err := db.RetryWithBackoff(ctx, s.log, db.BackendSQLite, db.DefaultRetryConfig, func(ctx context.Context) error {
		var err error
		posts, err = s.queryAll(ctx)
		return err
	})
	if err := db.HandleQueryError(db.BackendSQLite, err, nil, "list posts", start); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *SQLiteStore) queryAll(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.builder.
		Select(postColumns...).
		From("posts").
		OrderBy("seq DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var (
			p         domain.Post
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.AuthorID, &createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of post %s: %w", p.ID, err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *SQLiteStore) PoolStats() db.PoolStats {
	return db.SQLPoolStats(s.db)()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
