package repository

import (
	"context"
	"errors"

	"github.com/aiagents/collab-hub/internal/user/domain"
)

// ErrUserNotFound covers both an unknown email and a wrong password so that
// callers cannot tell the two apart.
var ErrUserNotFound = errors.New("user not found")

// Directory is the identity provider consulted at sign-in.
type Directory interface {
	Find(ctx context.Context, email, password string) (domain.Record, error)
}

const timingGuardPassword = "collab-hub-timing-guard"
