package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aiagents/collab-hub/internal/common/logger"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

// IsRetryableError classifies transient failures of the given backend.
// Postgres: connection loss, serialization failures, lock timeouts.
// SQLite: a busy or locked database file.
func IsRetryableError(backend string, err error) bool {
	if err == nil {
		return false
	}

	switch backend {
	case BackendPostgres:
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) {
			return false
		}
		switch pgErr.Code {
		case "08000", "08003", "08006", "08001", "08004", "08007", "08P01",
			"40001", "40P01",
			"55P03":
			return true
		}
	case BackendSQLite:
		var liteErr *sqlite.Error
		if !errors.As(err, &liteErr) {
			return false
		}
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

// IsUniqueViolation reports a unique-constraint failure of either backend.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

// RetryWithBackoff runs op until it succeeds, fails permanently, or the
// attempts run out. Waiting between attempts stops early when ctx ends.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, backend string, cfg RetryConfig, op func(ctx context.Context) error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.Infof("%s operation succeeded after %d attempts", backend, attempt)
			}
			return nil
		}
		lastErr = err

		if !IsRetryableError(backend, err) || attempt == cfg.MaxAttempts {
			break
		}

		log.WithFields(ctx, logger.Fields{
			"backend": backend,
			"attempt": attempt,
			"action":  "db_retry",
		}).Warnf("transient %s failure, retrying in %v: %v", backend, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	if !IsRetryableError(backend, lastErr) {
		return lastErr
	}
	return fmt.Errorf("%s operation failed after %d attempts: %w", backend, cfg.MaxAttempts, lastErr)
}
