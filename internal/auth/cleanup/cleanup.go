package cleanup

import (
	"context"
	"time"

	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartRevokedSessionCleanup blocks until ctx is done, purging expired
// revocations every interval.
func StartRevokedSessionCleanup(ctx context.Context, repo ExpiredDeleter, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		log.Warnf("revoked session cleanup disabled: interval %v", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunOnce(ctx, repo, log)
		}
	}
}

func RunOnce(ctx context.Context, repo ExpiredDeleter, log *logger.Logger) int64 {
	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		log.Errorf("revoked session cleanup failed: %v", err)
		return 0
	}
	if deleted > 0 {
		metrics.RevokedSessionsCleanupDeleted.Add(float64(deleted))
		log.Infof("revoked session cleanup: deleted %d expired entries", deleted)
	}
	return deleted
}
