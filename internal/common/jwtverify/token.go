package jwtverify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
)

// Claims is the decoded payload of a session token.
type Claims struct {
	UserID    string
	Name      string
	Email     string
	SessionID string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func ParseToken(tokenString string, secret []byte, now func() time.Time) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", commonerrors.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Claims{}, commonerrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims type")
	}

	sub, _ := mapClaims["sub"].(string)
	name, _ := mapClaims["name"].(string)
	email, _ := mapClaims["email"].(string)
	sid, _ := mapClaims["sid"].(string)
	jti, _ := mapClaims["jti"].(string)
	if sub == "" || sid == "" || jti == "" {
		return Claims{}, fmt.Errorf("%w: missing sub, sid or jti claims", commonerrors.ErrInvalidToken)
	}

	claims := Claims{
		UserID:    sub,
		Name:      name,
		Email:     email,
		SessionID: sid,
		TokenID:   jti,
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// TokenFromRequest prefers the session cookie and falls back to a bearer header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}
