package domain

import (
	"context"
	"time"
)

// Session is the signed-in view of a user carried by a session token.
// ID stays stable across sliding refreshes; TokenID changes with every token.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Valid() bool {
	return s.ID != "" && s.UserID != ""
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || !s.Valid() {
		return Session{}, false
	}
	return s, true
}
