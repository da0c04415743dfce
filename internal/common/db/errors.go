package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

func tableFromOperation(operation string) string {
	operation = strings.ToLower(operation)
	switch {
	case strings.Contains(operation, "post"):
		return "posts"
	case strings.Contains(operation, "user"):
		return "users"
	default:
		return "unknown"
	}
}

func observe(backend, operation string, startTime time.Time) string {
	table := tableFromOperation(operation)
	metrics.DBQueryDurationSeconds.WithLabelValues(backend, operation, table).Observe(time.Since(startTime).Seconds())
	return table
}

// HandleQueryError records timing and maps "no rows" from either driver to notFoundErr.
func HandleQueryError(backend string, err error, notFoundErr error, operation string, startTime time.Time) error {
	table := observe(backend, operation, startTime)
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(backend, operation, table, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(backend string, err error, operation string, startTime time.Time) error {
	table := observe(backend, operation, startTime)
	if err == nil {
		return nil
	}
	metrics.DBQueryErrors.WithLabelValues(backend, operation, table, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}
