package websocket

import "github.com/aiagents/collab-hub/internal/chat/domain"

const (
	frameSend     = "send"
	frameCancel   = "cancel"
	frameSnapshot = "snapshot"
	frameError    = "error"
)

type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type serverFrame struct {
	Type     string           `json:"type"`
	Message  *domain.Message  `json:"message,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
	State    domain.State     `json:"state,omitempty"`
	Code     string           `json:"code,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func eventFrame(e domain.Event) serverFrame {
	return serverFrame{Type: string(e.Type), Message: e.Message, State: e.State}
}
