package http

import (
	"net/http"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/auth/service"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
	userdomain "github.com/aiagents/collab-hub/internal/user/domain"
)

type signInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Session  authdomain.Session `json:"session"`
	Redirect string             `json:"redirect,omitempty"`
}

type signInPageResponse struct {
	Title        string                   `json:"title"`
	Action       string                   `json:"action"`
	Method       string                   `json:"method"`
	Fields       []string                 `json:"fields"`
	DemoAccounts []userdomain.DemoAccount `json:"demo_accounts,omitempty"`
	SignedIn     bool                     `json:"signed_in"`
	Redirect     string                   `json:"redirect,omitempty"`
}

type Config struct {
	Cookies        CookieConfig
	DemoAccounts   []userdomain.DemoAccount
	DemoEnabled    bool
	RequestTimeout time.Duration
}

type Handler struct {
	sessions *service.SessionManager
	cfg      Config
	guard    *InFlightGuard
	log      *logger.Logger
}

func NewHandler(sessions *service.SessionManager, cfg Config, log *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		cfg:      cfg,
		guard:    NewInFlightGuard(),
		log:      log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	timeout := commonhttp.WithTimeout(h.cfg.RequestTimeout)

	mux.HandleFunc("/api/auth/signin", commonhttp.RequireMethod(http.MethodPost)(timeout(h.signIn)))
	mux.HandleFunc("/api/auth/session", commonhttp.RequireMethod(http.MethodGet)(h.currentSession))
	mux.HandleFunc("/api/auth/signout", commonhttp.RequireMethod(http.MethodPost)(timeout(h.signOut)))
	mux.HandleFunc("/api/auth/demo-accounts", commonhttp.RequireMethod(http.MethodGet)(h.demoAccounts))
	mux.HandleFunc("/auth/signin", commonhttp.RequireMethod(http.MethodGet)(h.signInPage))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	key := commonhttp.GetClientIP(r)
	if !h.guard.Acquire(key) {
		commonhttp.HandleError(w, r, service.ErrSignInInProgress, h.log)
		return
	}
	defer h.guard.Release(key)

	var req signInRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "signin_bad_request",
		}).Warn("sign-in rejected: malformed request")
		return
	}

	session, token, err := h.sessions.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.cfg.Cookies.set(w, r, token, session.ExpiresAt)
	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{Session: session, Redirect: "/"})
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	session, ok := authdomain.SessionFromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, commonerrors.ErrUnauthenticated, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if session, ok := authdomain.SessionFromContext(r.Context()); ok {
		if err := h.sessions.EndSession(r.Context(), session); err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
	}

	h.cfg.Cookies.clear(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) demoAccounts(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.DemoEnabled {
		commonhttp.WriteError(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found")
		return
	}
	accounts := h.cfg.DemoAccounts
	if accounts == nil {
		accounts = []userdomain.DemoAccount{}
	}
	commonhttp.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) signInPage(w http.ResponseWriter, r *http.Request) {
	resp := signInPageResponse{
		Title:  "Sign in to AI Agents Hub",
		Action: "/api/auth/signin",
		Method: http.MethodPost,
		Fields: []string{"email", "password"},
	}
	if h.cfg.DemoEnabled {
		resp.DemoAccounts = h.cfg.DemoAccounts
	}
	if _, ok := authdomain.SessionFromContext(r.Context()); ok {
		resp.SignedIn = true
		resp.Redirect = "/"
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}
