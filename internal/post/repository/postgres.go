package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/aiagents/collab-hub/internal/common/constants"
	"github.com/aiagents/collab-hub/internal/common/db"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/common/resilience"
	"github.com/aiagents/collab-hub/internal/post/domain"
)

const createPostsTablePostgres = `
CREATE TABLE IF NOT EXISTS posts (
    seq        BIGSERIAL PRIMARY KEY,
    id         TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL,
    author     TEXT NOT NULL,
    author_id  TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
)`

type PgStore struct {
	pool    *pgxpool.Pool
	log     *logger.Logger
	breaker *resilience.CircuitBreaker
}

func NewPgStore(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) (*PgStore, error) {
	if _, err := pool.Exec(ctx, createPostsTablePostgres); err != nil {
		return nil, fmt.Errorf("create posts table: %w", err)
	}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  constants.CircuitBreakerThreshold,
		Timeout:    constants.CircuitBreakerTimeout,
		ResetAfter: constants.CircuitBreakerResetAfter,
		Name:       "post_store",
		Ignore:     db.IsUniqueViolation,
		Logger:     log,
	})
	return &PgStore{pool: pool, log: log, breaker: breaker}, nil
}

func (s *PgStore) Append(ctx context.Context, post domain.Post) error {
	start := time.Now()
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		return db.RetryWithBackoff(ctx, s.log, db.BackendPostgres, db.DefaultRetryConfig, func(ctx context.Context) error {
			_, err := s.pool.Exec(
				ctx,
				`INSERT INTO posts (id, title, content, author, author_id, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				post.ID, post.Title, post.Content, post.Author, post.AuthorID, post.CreatedAt.UTC().Truncate(time.Microsecond),
			)
			return err
		})
	})
	if db.IsUniqueViolation(err) {
		_ = db.HandleExecError(db.BackendPostgres, err, "append post", start)
		return commonerrors.ErrDuplicateID
	}
	return db.HandleExecError(db.BackendPostgres, err, "append post", start)
}

func (s *PgStore) List(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post

	start := time.Now()
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		return db.RetryWithBackoff(ctx, s.log, db.BackendPostgres, db.DefaultRetryConfig, func(ctx context.Context) error {
			return s.queryAll(ctx, &posts)
		})
	})
	if err := db.HandleQueryError(db.BackendPostgres, err, nil, "list posts", start); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PgStore) queryAll(ctx context.Context, out *[]domain.Post) error {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, title, content, author, author_id, created_at FROM posts ORDER BY seq DESC`,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.AuthorID, &p.CreatedAt); err != nil {
			return err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	*out = posts
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (s *PgStore) Close() error { return nil }
