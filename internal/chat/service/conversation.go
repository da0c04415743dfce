package service

import (
	"sync"
	"time"

	"github.com/aiagents/collab-hub/internal/chat/domain"
	"github.com/aiagents/collab-hub/internal/common/constants"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

type conversation struct {
	mu          sync.Mutex
	messages    []domain.Message
	state       domain.State
	pending     *Pending
	stopWorker  func()
	subscribers map[int]chan domain.Event
	nextSubID   int
	closed      bool

	// guarded by ChatService.mu
	expiresAt time.Time
}

func newConversation() *conversation {
	return &conversation{
		state:       domain.StateIdle,
		subscribers: make(map[int]chan domain.Event),
	}
}

// callers hold c.mu for every method below

func (c *conversation) setState(s domain.State) {
	c.state = s
	c.publish(domain.Event{Type: domain.EventState, State: s})
}

func (c *conversation) appendMessage(m domain.Message) {
	c.messages = append(c.messages, m)
	metrics.ChatMessagesTotal.WithLabelValues(string(m.Role)).Inc()
	msg := m
	c.publish(domain.Event{Type: domain.EventMessage, Message: &msg})
}

func (c *conversation) publish(e domain.Event) {
	for _, ch := range c.subscribers {
		select {
		case ch <- e:
		default:
			metrics.ChatEventsDropped.Inc()
		}
	}
}

func (c *conversation) subscribe() (int, chan domain.Event) {
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan domain.Event, constants.ChatSubscriberBufSize)
	c.subscribers[id] = ch
	return id, ch
}

func (c *conversation) unsubscribe(id int) {
	if ch, ok := c.subscribers[id]; ok {
		delete(c.subscribers, id)
		close(ch)
	}
}

func (c *conversation) snapshot() ([]domain.Message, domain.State) {
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out, c.state
}
