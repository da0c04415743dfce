package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/aiagents/collab-hub/internal/common/constants"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/common/db"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/common/resilience"
	"github.com/aiagents/collab-hub/internal/user/domain"
)

const createUsersTableSQL = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgDirectory looks users up in Postgres; password_hash holds bcrypt hashes.
type PgDirectory struct {
	pool      *pgxpool.Pool
	hasher    commoncrypto.PasswordHasher
	log       *logger.Logger
	breaker   *resilience.CircuitBreaker
	guardHash string
}

func NewPgDirectory(ctx context.Context, pool *pgxpool.Pool, hasher commoncrypto.PasswordHasher, log *logger.Logger) (*PgDirectory, error) {
	if _, err := pool.Exec(ctx, createUsersTableSQL); err != nil {
		return nil, fmt.Errorf("create users table: %w", err)
	}
	guard, err := hasher.Hash(timingGuardPassword)
	if err != nil {
		return nil, fmt.Errorf("hash timing guard: %w", err)
	}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  constants.CircuitBreakerThreshold,
		Timeout:    constants.CircuitBreakerTimeout,
		ResetAfter: constants.CircuitBreakerResetAfter,
		Name:       "user_directory",
		Ignore:     func(err error) bool { return errors.Is(err, pgx.ErrNoRows) },
		Logger:     log,
	})
	return &PgDirectory{pool: pool, hasher: hasher, log: log, breaker: breaker, guardHash: guard}, nil
}

func (d *PgDirectory) Find(ctx context.Context, email, password string) (domain.Record, error) {
	var (
		record domain.Record
		id     string
	)

	start := time.Now()
	err := d.breaker.Call(ctx, func(ctx context.Context) error {
		return db.RetryWithBackoff(ctx, d.log, db.BackendPostgres, db.DefaultRetryConfig, func(ctx context.Context) error {
			return d.pool.QueryRow(
				ctx,
				`SELECT id, name, email, password_hash FROM users WHERE email = $1`,
				email,
			).Scan(&id, &record.Name, &record.Email, &record.PasswordHash)
		})
	})
	err = db.HandleQueryError(db.BackendPostgres, err, ErrUserNotFound, "find user by email", start)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = d.hasher.Compare(d.guardHash, password)
		}
		return domain.Record{}, err
	}

	record.ID = domain.ID(id)

	if err := d.hasher.Compare(record.PasswordHash, password); err != nil {
		return domain.Record{}, ErrUserNotFound
	}
	return record, nil
}

// Upsert stores a user, hashing the given password. Used to seed the table.
func (d *PgDirectory) Upsert(ctx context.Context, seed Seed) error {
	hash, err := d.hasher.Hash(seed.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	start := time.Now()
	_, err = d.pool.Exec(
		ctx,
		`INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, password_hash = EXCLUDED.password_hash`,
		seed.ID, seed.Name, seed.Email, hash,
	)
	return db.HandleExecError(db.BackendPostgres, err, "upsert user", start)
}
