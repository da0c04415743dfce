package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/auth/service"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	userdomain "github.com/aiagents/collab-hub/internal/user/domain"
)

func TestSessionManager_Authenticate_Success(t *testing.T) {
	f := newFixture(t, nil)

	session, token, err := f.manager.Authenticate(context.Background(), "demo@aiagents.com", "demo123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if session.Name != "Demo User" || session.UserID != "1" || session.Email != "demo@aiagents.com" {
		t.Errorf("unexpected session: %+v", session)
	}
	if !session.ExpiresAt.Equal(f.clock.Now().Add(testTTL)) {
		t.Errorf("expected expiry %v, got %v", f.clock.Now().Add(testTTL), session.ExpiresAt)
	}

	current, err := f.manager.CurrentSession(context.Background(), token)
	if err != nil {
		t.Fatalf("expected token to resolve, got %v", err)
	}
	if current.UserID != session.UserID || current.ID != session.ID || current.Name != "Demo User" {
		t.Errorf("claims projection mismatch: %+v vs %+v", current, session)
	}
}

func TestSessionManager_Authenticate_WrongPassword(t *testing.T) {
	f := newFixture(t, nil)

	_, token, err := f.manager.Authenticate(context.Background(), "demo@aiagents.com", "wrong")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if token != "" {
		t.Error("expected no token on rejection")
	}

	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.HTTPStatus() != 401 || de.Message() != "invalid credentials" {
		t.Errorf("unexpected domain error: %v", err)
	}
}

func TestSessionManager_Authenticate_EmptyCredentialsSkipDirectory(t *testing.T) {
	dir := &mockDirectory{findFunc: func(context.Context, string, string) (userdomain.Record, error) {
		t.Fatal("directory must not be consulted")
		return userdomain.Record{}, nil
	}}
	f := newFixture(t, dir)

	for _, creds := range [][2]string{{"", "demo123"}, {"demo@aiagents.com", ""}, {"   ", "demo123"}, {"demo@aiagents.com", "  "}} {
		_, _, err := f.manager.Authenticate(context.Background(), creds[0], creds[1])
		if !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("%q/%q: expected ErrInvalidCredentials, got %v", creds[0], creds[1], err)
		}
	}
	if dir.calls != 0 {
		t.Errorf("expected 0 directory calls, got %d", dir.calls)
	}
}

func TestSessionManager_Authenticate_DirectoryFailure(t *testing.T) {
	dir := &mockDirectory{findFunc: func(context.Context, string, string) (userdomain.Record, error) {
		return userdomain.Record{}, errors.New("connection reset")
	}}
	f := newFixture(t, dir)

	_, _, err := f.manager.Authenticate(context.Background(), "demo@aiagents.com", "demo123")
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Category() != commonerrors.CategoryInternal || de.HTTPStatus() != 500 {
		t.Errorf("expected internal 500, got %s %d", de.Category(), de.HTTPStatus())
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		t.Error("infrastructure failure must not look like a credential rejection")
	}
}

func TestSessionManager_CurrentSession_Expired(t *testing.T) {
	f := newFixture(t, nil)

	_, token, err := f.manager.Authenticate(context.Background(), "kyle@aiagents.com", "kyle123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	f.clock.Advance(testTTL + time.Second)
	if _, err := f.manager.CurrentSession(context.Background(), token); !errors.Is(err, service.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionManager_CurrentSession_ForeignSecret(t *testing.T) {
	f := newFixture(t, nil)

	otherIssuer := service.NewTokenIssuer("ffffffffffffffffffffffffffffffff", commoncrypto.NewUUIDGenerator(), testTTL, f.clock)
	token, _, err := otherIssuer.Issue(authdomain.Session{ID: "sid", UserID: "1", Name: "Demo User"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := f.manager.CurrentSession(context.Background(), token); !errors.Is(err, service.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := f.manager.CurrentSession(context.Background(), "not-a-token"); !errors.Is(err, service.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for garbage, got %v", err)
	}
}

func TestSessionManager_Refresh(t *testing.T) {
	f := newFixture(t, nil)

	session, token, err := f.manager.Authenticate(context.Background(), "demo@aiagents.com", "demo123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	_, same, refreshed, err := f.manager.Refresh(context.Background(), session)
	if err != nil || refreshed {
		t.Fatalf("expected no refresh on a fresh token, got %v, %v", refreshed, err)
	}
	if same.TokenID != session.TokenID {
		t.Error("expected session unchanged")
	}

	f.clock.Advance(testTTL/2 + time.Minute)
	newToken, next, refreshed, err := f.manager.Refresh(context.Background(), session)
	if err != nil || !refreshed {
		t.Fatalf("expected refresh past half-life, got %v, %v", refreshed, err)
	}
	if newToken == token || next.TokenID == session.TokenID {
		t.Error("expected a new token")
	}
	if next.ID != session.ID {
		t.Error("expected the session id to survive refresh")
	}
	if !next.ExpiresAt.After(session.ExpiresAt) {
		t.Error("expected the expiry to slide forward")
	}

	f.clock.Advance(testTTL/2 + time.Minute)
	if _, err := f.manager.CurrentSession(context.Background(), token); err == nil {
		t.Error("expected the original token to have expired")
	}
	if _, err := f.manager.CurrentSession(context.Background(), newToken); err != nil {
		t.Errorf("expected refreshed token to be valid, got %v", err)
	}
}

func TestSessionManager_EndSession(t *testing.T) {
	f := newFixture(t, nil)

	var ended []authdomain.Session
	f.manager.OnSessionEnd(func(_ context.Context, s authdomain.Session) {
		ended = append(ended, s)
	})

	session, token, err := f.manager.Authenticate(context.Background(), "admin@aiagents.com", "admin123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	f.clock.Advance(testTTL/2 + time.Minute)
	refreshedToken, _, _, err := f.manager.Refresh(context.Background(), session)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := f.manager.EndSession(context.Background(), session); err != nil {
		t.Fatalf("end session: %v", err)
	}
	for _, tok := range []string{token, refreshedToken} {
		if _, err := f.manager.CurrentSession(context.Background(), tok); !errors.Is(err, service.ErrInvalidSession) {
			t.Errorf("expected revoked token to be rejected, got %v", err)
		}
	}
	if len(ended) != 1 || ended[0].ID != session.ID {
		t.Errorf("expected end hook to run once for the session, got %+v", ended)
	}

	if err := f.manager.EndSession(context.Background(), session); err != nil {
		t.Errorf("expected ending twice to succeed, got %v", err)
	}
	if err := f.manager.EndSession(context.Background(), authdomain.Session{}); err != nil {
		t.Errorf("expected ending an empty session to be a no-op, got %v", err)
	}
}

func TestTokenIssuer_UsesClock(t *testing.T) {
	mockClock := clock.NewMockClock(time.Date(2030, 5, 5, 5, 5, 5, 0, time.UTC))
	issuer := service.NewTokenIssuer(testSecret, commoncrypto.NewUUIDGenerator(), time.Hour, mockClock)

	token, session, err := issuer.Issue(authdomain.Session{ID: "sid", UserID: "3", Name: "Kyle Mabbott", Email: "kyle@aiagents.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !session.IssuedAt.Equal(mockClock.Now()) {
		t.Errorf("expected issued at %v, got %v", mockClock.Now(), session.IssuedAt)
	}

	parsed, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Email != "kyle@aiagents.com" || parsed.TokenID != session.TokenID {
		t.Errorf("unexpected parsed session: %+v", parsed)
	}
}
