package repository

import (
	"context"

	"github.com/aiagents/collab-hub/internal/post/domain"
)

// Store is an append-only log of posts keyed by id. List returns posts
// newest first by insertion order.
type Store interface {
	Append(ctx context.Context, post domain.Post) error
	List(ctx context.Context) ([]domain.Post, error)
	Close() error
}
