package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/chat/domain"
	"github.com/aiagents/collab-hub/internal/chat/responder"
	"github.com/aiagents/collab-hub/internal/common/clock"
	"github.com/aiagents/collab-hub/internal/common/constants"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

// ChatService holds one in-memory conversation per session. Responses are
// produced by workers detached from the request that triggered them.
type ChatService struct {
	responder responder.Responder
	ids       commoncrypto.IDGenerator
	clock     clock.Clock
	log       *logger.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc
	workers    sync.WaitGroup

	mu            sync.Mutex
	conversations map[string]*conversation
}

func NewChatService(r responder.Responder, ids commoncrypto.IDGenerator, clock clock.Clock, log *logger.Logger) *ChatService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatService{
		responder:     r,
		ids:           ids,
		clock:         clock,
		log:           log,
		baseCtx:       ctx,
		baseCancel:    cancel,
		conversations: make(map[string]*conversation),
	}
}

func (s *ChatService) conversation(session authdomain.Session) (*conversation, error) {
	if !session.Valid() {
		return nil, commonerrors.ErrUnauthenticated
	}

	now := s.clock.Now()
	if sessionExpired(session.ExpiresAt, now) {
		return nil, commonerrors.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[session.ID]
	if !ok {
		conv = newConversation()
		s.conversations[session.ID] = conv
		metrics.ChatConversationsActive.Inc()
	}
	// a refreshed token keeps the sid and moves the expiry forward
	if session.ExpiresAt.After(conv.expiresAt) {
		conv.expiresAt = session.ExpiresAt
	}
	return conv, nil
}

// sessionExpired treats a zero expiry as open-ended.
func sessionExpired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}

// Send appends the user message and schedules the assistant response.
func (s *ChatService) Send(ctx context.Context, session authdomain.Session, text string) (domain.Message, *Pending, error) {
	conv, err := s.conversation(session)
	if err != nil {
		return domain.Message{}, nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > constants.MaxChatMessageLength {
		return domain.Message{}, nil, ErrMessageTooLong
	}

	id, err := s.ids.NewID()
	if err != nil {
		return domain.Message{}, nil, commonerrors.NewInternalError("CHAT_SEND_FAILED", "internal server error", err)
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.closed {
		return domain.Message{}, nil, commonerrors.ErrUnauthenticated
	}
	if conv.state != domain.StateIdle {
		return domain.Message{}, nil, ErrResponsePending
	}

	conv.setState(domain.StateSending)
	userMsg := domain.Message{
		ID:        id,
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: s.clock.Now().UTC(),
	}
	conv.appendMessage(userMsg)

	workerCtx, stop := context.WithCancel(s.baseCtx)
	p := newPending()
	p.cancelFn = func() { s.cancel(conv, p) }
	conv.pending = p
	conv.stopWorker = stop
	conv.setState(domain.StateAwaitingResponse)

	s.log.WithFields(ctx, logger.Fields{
		"user_id":    session.UserID,
		"message_id": id,
		"action":     "chat_message_sent",
	}).Debug("chat message accepted")

	s.workers.Add(1)
	go s.respond(workerCtx, conv, p, text)

	return userMsg, p, nil
}

func (s *ChatService) respond(ctx context.Context, conv *conversation, p *Pending, input string) {
	defer s.workers.Done()

	start := s.clock.Now()
	reply, err := s.responder.Respond(ctx, input)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.pending != p {
		return
	}
	conv.pending = nil
	if conv.stopWorker != nil {
		conv.stopWorker()
		conv.stopWorker = nil
	}

	if err != nil {
		if ctx.Err() == nil {
			s.log.WithFields(ctx, logger.Fields{
				"action": "chat_responder_failed",
			}).Errorf("responder failed: %v", err)
		}
		metrics.ChatResponsesCancelled.Inc()
		conv.setState(domain.StateIdle)
		p.resolve(domain.Message{}, ErrResponseCancelled.WithCause(err))
		return
	}

	id, idErr := s.ids.NewID()
	if idErr != nil {
		conv.setState(domain.StateIdle)
		p.resolve(domain.Message{}, commonerrors.NewInternalError("CHAT_RESPOND_FAILED", "internal server error", idErr))
		return
	}

	msg := domain.Message{
		ID:        id,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: s.clock.Now().UTC(),
	}
	conv.appendMessage(msg)
	conv.setState(domain.StateIdle)
	metrics.ChatResponseDurationSeconds.Observe(s.clock.Since(start).Seconds())
	p.resolve(msg, nil)
}

func (s *ChatService) cancel(conv *conversation, p *Pending) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.pending != p {
		return
	}
	s.discardPending(conv)
	conv.setState(domain.StateIdle)
}

// discardPending requires conv.mu.
func (s *ChatService) discardPending(conv *conversation) {
	p := conv.pending
	conv.pending = nil
	if conv.stopWorker != nil {
		conv.stopWorker()
		conv.stopWorker = nil
	}
	metrics.ChatResponsesCancelled.Inc()
	p.resolve(domain.Message{}, ErrResponseCancelled)
}

// CancelPending discards the outstanding response of the session's conversation.
func (s *ChatService) CancelPending(session authdomain.Session) error {
	conv, err := s.conversation(session)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	p := conv.pending
	conv.mu.Unlock()

	if p == nil {
		return ErrNothingPending
	}
	p.Cancel()
	return nil
}

func (s *ChatService) History(session authdomain.Session) ([]domain.Message, domain.State, error) {
	conv, err := s.conversation(session)
	if err != nil {
		return nil, "", err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	messages, state := conv.snapshot()
	return messages, state, nil
}

// Subscribe streams conversation events. The channel is closed when the
// returned release func is called or the conversation is closed.
func (s *ChatService) Subscribe(session authdomain.Session) (<-chan domain.Event, []domain.Message, domain.State, func(), error) {
	conv, err := s.conversation(session)
	if err != nil {
		return nil, nil, "", nil, err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.closed {
		return nil, nil, "", nil, commonerrors.ErrUnauthenticated
	}
	id, ch := conv.subscribe()
	messages, state := conv.snapshot()

	var once sync.Once
	release := func() {
		once.Do(func() {
			conv.mu.Lock()
			conv.unsubscribe(id)
			conv.mu.Unlock()
		})
	}
	return ch, messages, state, release, nil
}

// Close destroys the conversation of a session, discarding any pending
// response and ending every subscription.
func (s *ChatService) Close(sessionID string) {
	s.mu.Lock()
	conv, ok := s.conversations[sessionID]
	if ok {
		delete(s.conversations, sessionID)
		metrics.ChatConversationsActive.Dec()
	}
	s.mu.Unlock()

	if ok {
		s.destroy(conv)
	}
}

// SweepExpired destroys every conversation whose session expired without a
// sign-out and reports how many were removed.
func (s *ChatService) SweepExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	var expired []*conversation
	for sid, conv := range s.conversations {
		if sessionExpired(conv.expiresAt, now) {
			delete(s.conversations, sid)
			expired = append(expired, conv)
		}
	}
	metrics.ChatConversationsActive.Sub(float64(len(expired)))
	s.mu.Unlock()

	for _, conv := range expired {
		s.destroy(conv)
	}
	if len(expired) > 0 {
		metrics.ChatConversationsExpired.Add(float64(len(expired)))
		s.log.Infof("chat sweep: closed %d expired conversations", len(expired))
	}
	return len(expired)
}

// StartExpiredSweep blocks until ctx is done, sweeping every interval.
func (s *ChatService) StartExpiredSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.log.Warnf("chat conversation sweep disabled: interval %v", interval)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(interval):
			s.SweepExpired()
		}
	}
}

func (s *ChatService) ActiveConversations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *ChatService) destroy(conv *conversation) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.closed = true
	if conv.pending != nil {
		s.discardPending(conv)
	}
	conv.state = domain.StateIdle
	for id := range conv.subscribers {
		conv.unsubscribe(id)
	}
}

func (s *ChatService) OnSessionEnd(_ context.Context, session authdomain.Session) {
	s.Close(session.ID)
}

// Shutdown cancels all outstanding responses and waits for their workers.
func (s *ChatService) Shutdown(ctx context.Context) error {
	s.baseCancel()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
