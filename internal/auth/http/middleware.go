package http

import (
	"errors"
	"net/http"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/auth/service"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/jwtverify"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

const RefreshedTokenHeader = "X-Session-Token"

// SessionMiddleware resolves the session once per request and stores it in
// the request context. Requests without a valid token pass through anonymous.
type SessionMiddleware struct {
	sessions *service.SessionManager
	cookies  CookieConfig
	log      *logger.Logger
}

func NewSessionMiddleware(sessions *service.SessionManager, cookies CookieConfig, log *logger.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, cookies: cookies, log: log}
}

func (m *SessionMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := jwtverify.TokenFromRequest(r, m.cookies.Name)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		session, err := m.sessions.CurrentSession(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidSession) {
				if fromCookie(r, m.cookies.Name) {
					m.cookies.clear(w, r)
				}
				next.ServeHTTP(w, r)
				return
			}
			commonhttp.HandleError(w, r, err, m.log)
			return
		}

		refreshedToken, refreshed, ok, err := m.sessions.Refresh(ctx, session)
		if err != nil {
			m.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "session_refresh_skipped",
			}).Warnf("keeping current token: %v", err)
		} else if ok {
			session = refreshed
			if fromCookie(r, m.cookies.Name) {
				m.cookies.set(w, r, refreshedToken, refreshed.ExpiresAt)
			} else {
				w.Header().Set(RefreshedTokenHeader, refreshedToken)
			}
		}

		next.ServeHTTP(w, r.WithContext(authdomain.WithSession(ctx, session)))
	})
}

// RequireSession rejects requests that carry no resolved session.
func RequireSession(log *logger.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := authdomain.SessionFromContext(r.Context()); !ok {
				commonhttp.HandleError(w, r, commonerrors.ErrUnauthenticated, log)
				return
			}
			next(w, r)
		}
	}
}

func fromCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}
