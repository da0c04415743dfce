package websocket

import (
	"context"
	"encoding/json"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/chat/domain"
	"github.com/aiagents/collab-hub/internal/chat/service"
	"github.com/aiagents/collab-hub/internal/common/constants"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

// Client bridges one websocket connection to a conversation subscription.
type Client struct {
	conn    *gorillaWS.Conn
	chat    *service.ChatService
	session authdomain.Session
	events  <-chan domain.Event
	release func()
	replies chan serverFrame
	done    chan struct{}
	log     *logger.Logger
}

func newClient(conn *gorillaWS.Conn, chat *service.ChatService, session authdomain.Session, events <-chan domain.Event, release func(), log *logger.Logger) *Client {
	return &Client{
		conn:    conn,
		chat:    chat,
		session: session,
		events:  events,
		release: release,
		replies: make(chan serverFrame, constants.WebSocketSendBufSize),
		done:    make(chan struct{}),
		log:     log,
	}
}

func (c *Client) Start(snapshot serverFrame) {
	metrics.ChatWebSocketConnectionsActive.Inc()
	go c.writePump(snapshot)
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.release()
		c.conn.Close()
		metrics.ChatWebSocketConnectionsActive.Dec()
	}()

	c.conn.SetReadLimit(constants.WebSocketMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				c.log.Warnf("websocket read error user_id=%s: %v", c.session.UserID, err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reply(serverFrame{Type: frameError, Code: "INVALID_JSON", Error: "invalid json"})
			continue
		}
		c.handle(frame)
	}
}

func (c *Client) handle(frame clientFrame) {
	var err error
	switch frame.Type {
	case frameSend:
		_, _, err = c.chat.Send(context.Background(), c.session, frame.Content)
	case frameCancel:
		err = c.chat.CancelPending(c.session)
	default:
		c.reply(serverFrame{Type: frameError, Code: "UNKNOWN_FRAME", Error: "unknown frame type"})
		return
	}
	if err == nil {
		return
	}

	if de, ok := commonerrors.AsDomainError(err); ok {
		c.reply(serverFrame{Type: frameError, Code: de.Code(), Error: de.Message()})
		return
	}
	c.log.WithFields(context.Background(), logger.Fields{
		"user_id": c.session.UserID,
		"action":  "websocket_frame_failed",
	}).Errorf("websocket frame %s failed: %v", frame.Type, err)
	c.reply(serverFrame{Type: frameError, Code: "INTERNAL_ERROR", Error: "internal server error"})
}

func (c *Client) reply(f serverFrame) {
	select {
	case c.replies <- f:
	default:
		metrics.ChatEventsDropped.Inc()
	}
}

func (c *Client) writePump(snapshot serverFrame) {
	ticker := time.NewTicker(constants.WebSocketPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	if err := c.write(snapshot); err != nil {
		return
	}

	for {
		select {
		case <-c.done:
			return

		case e, ok := <-c.events:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
				c.conn.WriteMessage(gorillaWS.CloseMessage,
					gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, "session ended"))
				return
			}
			if err := c.write(eventFrame(e)); err != nil {
				return
			}

		case f := <-c.replies:
			if err := c.write(f); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(f serverFrame) error {
	c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
	return c.conn.WriteJSON(f)
}
