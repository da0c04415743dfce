package websocket

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/chat/service"
	"github.com/aiagents/collab-hub/internal/common/constants"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

type Handler struct {
	chat     *service.ChatService
	upgrader gorillaWS.Upgrader
	log      *logger.Logger
}

func NewHandler(chat *service.ChatService, log *logger.Logger) *Handler {
	return &Handler{
		chat: chat,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
		},
		log: log,
	}
}

// ServeHTTP upgrades a signed-in request and streams its conversation.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := authdomain.SessionFromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, commonerrors.ErrUnauthenticated, h.log)
		return
	}

	events, messages, state, release, err := h.chat.Subscribe(session)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": session.UserID,
			"action":  "websocket_upgrade_failed",
		}).Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(conn, h.chat, session, events, release, h.log)
	client.Start(serverFrame{Type: frameSnapshot, Messages: messages, State: state})
}
