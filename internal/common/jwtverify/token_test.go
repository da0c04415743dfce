package jwtverify_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/jwtverify"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func sign(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func baseClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "1",
		"name":  "Demo User",
		"email": "demo@aiagents.com",
		"sid":   "session-1",
		"jti":   "token-1",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func TestParseToken_Valid(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := sign(t, baseClaims(now), secret)

	claims, err := jwtverify.ParseToken(token, secret, func() time.Time { return now })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.UserID != "1" || claims.Name != "Demo User" || claims.SessionID != "session-1" || claims.TokenID != "token-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected exp %v, got %v", now.Add(time.Hour), claims.ExpiresAt)
	}
}

func TestParseToken_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := sign(t, baseClaims(now), secret)

	_, err := jwtverify.ParseToken(token, secret, func() time.Time { return now.Add(2 * time.Hour) })
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := sign(t, baseClaims(now), []byte("another-secret-another-secret-xx"))

	_, err := jwtverify.ParseToken(token, secret, func() time.Time { return now })
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MissingSessionID(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	claims := baseClaims(now)
	delete(claims, "sid")
	token := sign(t, claims, secret)

	_, err := jwtverify.ParseToken(token, secret, func() time.Time { return now })
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, baseClaims(now)).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := jwtverify.ParseToken(token, secret, func() time.Time { return now }); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := jwtverify.TokenFromRequest(req, "session_token"); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer from-header")
	if got := jwtverify.TokenFromRequest(req, "session_token"); got != "from-header" {
		t.Errorf("expected bearer token, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: "session_token", Value: "from-cookie"})
	if got := jwtverify.TokenFromRequest(req, "session_token"); got != "from-cookie" {
		t.Errorf("expected cookie to take precedence, got %q", got)
	}
}
