package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/chat/domain"
	chathttp "github.com/aiagents/collab-hub/internal/chat/http"
	"github.com/aiagents/collab-hub/internal/chat/responder"
	"github.com/aiagents/collab-hub/internal/chat/service"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

var demoSession = authdomain.Session{ID: "sid-1", UserID: "1", Name: "Demo User", Email: "demo@aiagents.com"}

type history struct {
	Messages []domain.Message `json:"messages"`
	State    domain.State     `json:"state"`
}

func newMux(t *testing.T, delay time.Duration) *http.ServeMux {
	t.Helper()
	log, _ := logger.New("", "test", "info")
	svc := service.NewChatService(responder.NewTemplateResponder(delay, nil), commoncrypto.NewUUIDGenerator(), clock.NewRealClock(), log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})

	mux := http.NewServeMux()
	chathttp.NewHandler(svc, log).Register(mux)
	return mux
}

func serve(mux *http.ServeMux, method, path, body string, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if signedIn {
		req = req.WithContext(authdomain.WithSession(req.Context(), demoSession))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func getHistory(t *testing.T, mux *http.ServeMux) history {
	t.Helper()
	rec := serve(mux, http.MethodGet, "/api/chat/messages", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", rec.Code)
	}
	var h history
	if err := json.NewDecoder(rec.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return h
}

func TestChatHTTP_RequiresSession(t *testing.T) {
	mux := newMux(t, 0)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/chat/messages"},
		{http.MethodPost, "/api/chat/messages"},
		{http.MethodPost, "/api/chat/cancel"},
	} {
		if rec := serve(mux, tc.method, tc.path, `{"content":"hi"}`, false); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestChatHTTP_SendAndReply(t *testing.T) {
	mux := newMux(t, 0)

	rec := serve(mux, http.MethodPost, "/api/chat/messages", `{"content":"Plan a launch"}`, true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var sent struct {
		Message domain.Message `json:"message"`
		State   domain.State   `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.Message.Role != domain.RoleUser || sent.State != domain.StateAwaitingResponse {
		t.Errorf("unexpected send response: %+v", sent)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		h := getHistory(t, mux)
		if h.State == domain.StateIdle && len(h.Messages) == 2 {
			if h.Messages[1].Content != responder.Simulated("Plan a launch") {
				t.Errorf("unexpected reply: %s", h.Messages[1].Content)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("reply never arrived: %+v", h)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestChatHTTP_EmptyMessage(t *testing.T) {
	mux := newMux(t, 0)

	for _, body := range []string{`{"content":""}`, `{"content":"   "}`} {
		if rec := serve(mux, http.MethodPost, "/api/chat/messages", body, true); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestChatHTTP_PendingAndCancel(t *testing.T) {
	mux := newMux(t, time.Hour)

	if rec := serve(mux, http.MethodPost, "/api/chat/cancel", "", true); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 with nothing pending, got %d", rec.Code)
	}

	if rec := serve(mux, http.MethodPost, "/api/chat/messages", `{"content":"first"}`, true); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if rec := serve(mux, http.MethodPost, "/api/chat/messages", `{"content":"second"}`, true); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while awaiting, got %d", rec.Code)
	}

	if rec := serve(mux, http.MethodPost, "/api/chat/cancel", "", true); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	h := getHistory(t, mux)
	if h.State != domain.StateIdle || len(h.Messages) != 1 {
		t.Errorf("expected idle with only the user message, got %+v", h)
	}
}
