package service_test

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/chat/domain"
	"github.com/aiagents/collab-hub/internal/chat/responder"
	"github.com/aiagents/collab-hub/internal/chat/service"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

type mockResponder struct {
	respondFunc func(ctx context.Context, input string) (string, error)
}

func (m *mockResponder) Respond(ctx context.Context, input string) (string, error) {
	if m.respondFunc != nil {
		return m.respondFunc(ctx, input)
	}
	return responder.Simulated(input), nil
}

// gatedResponder holds every reply until release is closed or ctx ends.
func gatedResponder(release <-chan struct{}) *mockResponder {
	return &mockResponder{respondFunc: func(ctx context.Context, input string) (string, error) {
		select {
		case <-release:
			return responder.Simulated(input), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}
}

var demoSession = authdomain.Session{
	ID:     "sid-1",
	UserID: "1",
	Name:   "Demo User",
	Email:  "demo@aiagents.com",
}

func newChat(t *testing.T, r responder.Responder) *service.ChatService {
	t.Helper()
	return newChatWithClock(t, r, clock.NewMockClock(time.Now()))
}

func newChatWithClock(t *testing.T, r responder.Responder, clk clock.Clock) *service.ChatService {
	t.Helper()
	log, _ := logger.New("", "test", "info")
	svc := service.NewChatService(r, commoncrypto.NewUUIDGenerator(), clk, log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})
	return svc
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func nextEvent(t *testing.T, events <-chan domain.Event) domain.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.Event{}
}
