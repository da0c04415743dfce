package http

import (
	"net/http"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	authhttp "github.com/aiagents/collab-hub/internal/auth/http"
	"github.com/aiagents/collab-hub/internal/chat/domain"
	"github.com/aiagents/collab-hub/internal/chat/service"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

type sendRequest struct {
	Content string `json:"content" validate:"required"`
}

type sendResponse struct {
	Message domain.Message `json:"message"`
	State   domain.State   `json:"state"`
}

type historyResponse struct {
	Messages []domain.Message `json:"messages"`
	State    domain.State     `json:"state"`
}

type Handler struct {
	chat *service.ChatService
	log  *logger.Logger
}

func NewHandler(chat *service.ChatService, log *logger.Logger) *Handler {
	return &Handler{chat: chat, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	requireSession := authhttp.RequireSession(h.log)
	mux.HandleFunc("/api/chat/messages", requireSession(h.messages))
	mux.HandleFunc("/api/chat/cancel", commonhttp.RequireMethod(http.MethodPost)(requireSession(h.cancel)))
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.history(w, r)
	case http.MethodPost:
		h.send(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	session, _ := authdomain.SessionFromContext(r.Context())
	messages, state, err := h.chat.History(session)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, historyResponse{Messages: messages, State: state})
}

// send answers 202 once the user message is stored; the assistant reply
// arrives later through history or the websocket stream.
func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	session, _ := authdomain.SessionFromContext(r.Context())
	msg, _, err := h.chat.Send(r.Context(), session, req.Content)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusAccepted, sendResponse{Message: msg, State: domain.StateAwaitingResponse})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	session, _ := authdomain.SessionFromContext(r.Context())
	if err := h.chat.CancelPending(session); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
