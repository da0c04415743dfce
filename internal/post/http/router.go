package http

import (
	"net/http"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	authhttp "github.com/aiagents/collab-hub/internal/auth/http"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/post/domain"
	"github.com/aiagents/collab-hub/internal/post/service"
)

type createPostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type listPostsResponse struct {
	Posts []domain.Post `json:"posts"`
}

type Handler struct {
	feed    *service.FeedService
	timeout time.Duration
	log     *logger.Logger
}

func NewHandler(feed *service.FeedService, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{feed: feed, timeout: timeout, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/posts", commonhttp.WithTimeout(h.timeout)(h.posts))
}

func (h *Handler) posts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		authhttp.RequireSession(h.log)(h.create)(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feed.List(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, listPostsResponse{Posts: posts})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	session, _ := authdomain.SessionFromContext(r.Context())
	post, err := h.feed.Create(r.Context(), session, req.Title, req.Content)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, post)
}
