package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	authrepo "github.com/aiagents/collab-hub/internal/auth/repository"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	userrepo "github.com/aiagents/collab-hub/internal/user/repository"
)

type SessionEndHook func(ctx context.Context, s authdomain.Session)

type SessionManager struct {
	directory   userrepo.Directory
	issuer      *TokenIssuer
	revoked     authrepo.RevokedSessionRepository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger

	hooksMu  sync.RWMutex
	endHooks []SessionEndHook
}

func NewSessionManager(
	directory userrepo.Directory,
	issuer *TokenIssuer,
	revoked authrepo.RevokedSessionRepository,
	idGenerator commoncrypto.IDGenerator,
	clock clock.Clock,
	log *logger.Logger,
) *SessionManager {
	return &SessionManager{
		directory:   directory,
		issuer:      issuer,
		revoked:     revoked,
		idGenerator: idGenerator,
		clock:       clock,
		log:         log,
	}
}

// OnSessionEnd registers fn to run after a session is ended by sign-out.
func (m *SessionManager) OnSessionEnd(fn SessionEndHook) {
	m.hooksMu.Lock()
	m.endHooks = append(m.endHooks, fn)
	m.hooksMu.Unlock()
}

func (m *SessionManager) Authenticate(ctx context.Context, email, password string) (authdomain.Session, string, error) {
	email = strings.TrimSpace(email)

	m.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "signin_attempt",
	}).Info("sign-in attempt")

	if email == "" || strings.TrimSpace(password) == "" {
		recordSignIn(outcomeInvalidCredentials)
		m.log.WithFields(ctx, logger.Fields{
			"action": "signin_empty_credentials",
		}).Warn("sign-in rejected: empty credentials")
		return authdomain.Session{}, "", ErrInvalidCredentials
	}

	record, err := m.directory.Find(ctx, email, password)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			recordSignIn(outcomeInvalidCredentials)
			m.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "signin_rejected",
			}).Warn("sign-in rejected: invalid credentials")
			return authdomain.Session{}, "", ErrInvalidCredentials
		}
		recordSignIn(outcomeError)
		m.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "signin_lookup_failed",
		}).Errorf("sign-in failed: directory lookup error: %v", err)
		if errors.Is(err, commonerrors.ErrCircuitOpen) {
			return authdomain.Session{}, "", commonerrors.ErrCircuitOpen
		}
		return authdomain.Session{}, "", internalError("SIGNIN_FAILED", err)
	}

	sid, err := m.idGenerator.NewID()
	if err != nil {
		recordSignIn(outcomeError)
		return authdomain.Session{}, "", internalError("SIGNIN_FAILED", err)
	}

	token, session, err := m.issuer.Issue(authdomain.Session{
		ID:     sid,
		UserID: string(record.ID),
		Name:   record.Name,
		Email:  record.Email,
	})
	if err != nil {
		recordSignIn(outcomeError)
		m.log.WithFields(ctx, logger.Fields{
			"user_id": string(record.ID),
			"action":  "signin_token_issue_failed",
		}).Errorf("sign-in failed: token issue error: %v", err)
		return authdomain.Session{}, "", internalError("SIGNIN_FAILED", err)
	}

	recordSignIn(outcomeSuccess)
	incrementSessionsIssued()
	m.log.WithFields(ctx, logger.Fields{
		"user_id": session.UserID,
		"action":  "signin_success",
	}).Info("sign-in success")

	return session, token, nil
}

// CurrentSession verifies a presented token and projects its claims.
func (m *SessionManager) CurrentSession(ctx context.Context, token string) (authdomain.Session, error) {
	if token == "" {
		return authdomain.Session{}, ErrInvalidSession
	}

	session, err := m.issuer.Parse(token)
	if err != nil {
		incrementSessionValidationsFailed()
		if m.log.ShouldLog(logger.DEBUG) {
			m.log.WithFields(ctx, logger.Fields{
				"action": "session_parse_failed",
			}).Debugf("session token rejected: %v", err)
		}
		return authdomain.Session{}, ErrInvalidSession
	}

	revoked, err := m.revoked.IsRevoked(ctx, session.ID)
	if err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"action": "session_revocation_check_failed",
		}).Errorf("revocation check failed: %v", err)
		return authdomain.Session{}, internalError("SESSION_CHECK_FAILED", err)
	}
	if revoked {
		incrementSessionValidationsFailed()
		return authdomain.Session{}, ErrInvalidSession
	}

	return session, nil
}

// Refresh re-issues the token once less than half of its lifetime remains.
// The session id is kept so conversations and revocation follow the refresh.
func (m *SessionManager) Refresh(ctx context.Context, s authdomain.Session) (string, authdomain.Session, bool, error) {
	if !s.Valid() {
		return "", authdomain.Session{}, false, ErrInvalidSession
	}

	remaining := s.ExpiresAt.Sub(m.clock.Now())
	if remaining >= m.issuer.TTL()/2 {
		return "", s, false, nil
	}

	token, refreshed, err := m.issuer.Issue(s)
	if err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"user_id": s.UserID,
			"action":  "session_refresh_failed",
		}).Errorf("session refresh failed: %v", err)
		return "", s, false, internalError("SESSION_REFRESH_FAILED", err)
	}

	incrementSessionsRefreshed()
	return token, refreshed, true, nil
}

// EndSession revokes every token of the session. Ending an already ended
// session is not an error.
func (m *SessionManager) EndSession(ctx context.Context, s authdomain.Session) error {
	if !s.Valid() {
		return nil
	}

	until := m.clock.Now().Add(m.issuer.TTL())
	if err := m.revoked.Revoke(ctx, s.ID, s.UserID, until); err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"user_id": s.UserID,
			"action":  "signout_revoke_failed",
		}).Errorf("sign-out failed: %v", err)
		return internalError("SIGNOUT_FAILED", err)
	}

	incrementSessionsEnded()
	m.log.WithFields(ctx, logger.Fields{
		"user_id": s.UserID,
		"action":  "signout_success",
	}).Info("session ended")

	m.hooksMu.RLock()
	hooks := append([]SessionEndHook(nil), m.endHooks...)
	m.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, s)
	}
	return nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.issuer.TTL()
}
