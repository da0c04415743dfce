package repository

import (
	"context"
	"sync"
	"time"

	"github.com/aiagents/collab-hub/internal/common/clock"
)

type RevokedSessionRepository interface {
	Revoke(ctx context.Context, sessionID string, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type revokedEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryRevokedSessionRepository keeps revocations until the revoked token
// would have expired on its own. Entries are lost on restart.
type MemoryRevokedSessionRepository struct {
	mu      sync.RWMutex
	entries map[string]revokedEntry
	clock   clock.Clock
}

func NewMemoryRevokedSessionRepository(c clock.Clock) *MemoryRevokedSessionRepository {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &MemoryRevokedSessionRepository{
		entries: make(map[string]revokedEntry),
		clock:   c,
	}
}

func (r *MemoryRevokedSessionRepository) Revoke(ctx context.Context, sessionID string, userID string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[sessionID]; ok && existing.expiresAt.After(expiresAt) {
		return nil
	}
	r.entries[sessionID] = revokedEntry{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *MemoryRevokedSessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[sessionID]
	if !ok {
		return false, nil
	}
	return entry.expiresAt.After(r.clock.Now()), nil
}

func (r *MemoryRevokedSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var deleted int64
	for id, entry := range r.entries {
		if !entry.expiresAt.After(now) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRevokedSessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
