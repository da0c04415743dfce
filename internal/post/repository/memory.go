package repository

import (
	"context"
	"sync"

	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/post/domain"
)

type MemoryStore struct {
	mu    sync.RWMutex
	posts []domain.Post
	ids   map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

func (s *MemoryStore) Append(ctx context.Context, post domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[post.ID]; exists {
		return commonerrors.ErrDuplicateID
	}
	s.ids[post.ID] = struct{}{}
	s.posts = append(s.posts, post)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Post, len(s.posts))
	for i, p := range s.posts {
		out[len(s.posts)-1-i] = p
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
