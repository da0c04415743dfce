package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/aiagents/collab-hub/internal/common/constants"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

// PoolStats is a point-in-time view of a connection pool.
type PoolStats struct {
	InUse int
	Idle  int
	Total int
}

type PoolStatsFunc func() PoolStats

func PgxPoolStats(pool *pgxpool.Pool) PoolStatsFunc {
	return func() PoolStats {
		st := pool.Stat()
		return PoolStats{
			InUse: int(st.AcquiredConns()),
			Idle:  int(st.IdleConns()),
			Total: int(st.TotalConns()),
		}
	}
}

func SQLPoolStats(conn *sql.DB) PoolStatsFunc {
	return func() PoolStats {
		st := conn.Stats()
		return PoolStats{InUse: st.InUse, Idle: st.Idle, Total: st.OpenConnections}
	}
}

// RecordPoolStats publishes one sample for backend.
func RecordPoolStats(backend string, st PoolStats) {
	metrics.DBPoolAcquiredConnections.WithLabelValues(backend).Set(float64(st.InUse))
	metrics.DBPoolIdleConnections.WithLabelValues(backend).Set(float64(st.Idle))
	metrics.DBPoolTotalConnections.WithLabelValues(backend).Set(float64(st.Total))
}

// StartPoolMetrics samples stats every interval until ctx is done.
func StartPoolMetrics(ctx context.Context, backend string, stats PoolStatsFunc, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	RecordPoolStats(backend, stats())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				RecordPoolStats(backend, stats())
			}
		}
	}()
}
