package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/common/jwtverify"
)

type TokenIssuer struct {
	secret      []byte
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	ttl         time.Duration
}

func NewTokenIssuer(
	secret string,
	idGenerator commoncrypto.IDGenerator,
	ttl time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		secret:      []byte(secret),
		idGenerator: idGenerator,
		clock:       clock,
		ttl:         ttl,
	}
}

// Issue signs a fresh token for the identity in s. The returned session
// carries the new token id and validity window.
func (ti *TokenIssuer) Issue(s authdomain.Session) (string, authdomain.Session, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", authdomain.Session{}, err
	}

	now := ti.clock.Now()
	expiresAt := now.Add(ti.ttl)
	claims := jwt.MapClaims{
		"sub":   s.UserID,
		"name":  s.Name,
		"email": s.Email,
		"sid":   s.ID,
		"jti":   jti,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(ti.secret)
	if err != nil {
		return "", authdomain.Session{}, err
	}

	s.TokenID = jti
	s.IssuedAt = time.Unix(now.Unix(), 0).UTC()
	s.ExpiresAt = time.Unix(expiresAt.Unix(), 0).UTC()
	return tokenString, s, nil
}

func (ti *TokenIssuer) Parse(tokenString string) (authdomain.Session, error) {
	claims, err := jwtverify.ParseToken(tokenString, ti.secret, ti.clock.Now)
	if err != nil {
		return authdomain.Session{}, err
	}
	return sessionFromClaims(claims), nil
}

func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

func sessionFromClaims(c jwtverify.Claims) authdomain.Session {
	return authdomain.Session{
		ID:        c.SessionID,
		UserID:    c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		TokenID:   c.TokenID,
		IssuedAt:  c.IssuedAt.UTC(),
		ExpiresAt: c.ExpiresAt.UTC(),
	}
}
