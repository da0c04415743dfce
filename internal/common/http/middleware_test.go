package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

func TestBuildBaseHandler_RecoversPanics(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	h := commonhttp.BuildBaseHandler("test", log, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("expected generic message, got %s", rec.Body.String())
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Error("expected trace id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestBuildBaseHandler_InnerOrder(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := commonhttp.BuildBaseHandler("test", log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("first"), tag("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("unexpected order: %v", order)
	}
}

func TestTraceIDMiddleware(t *testing.T) {
	var seen string
	h := commonhttp.TraceIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = commonhttp.TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get("X-Trace-ID") != "abc-123" {
		t.Errorf("expected caller trace id to propagate, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "bad id\nwith newline")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "" || strings.ContainsAny(seen, " \n") {
		t.Errorf("expected malformed trace id to be replaced, got %q", seen)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote v4", nil, "10.0.0.7:5123", "10.0.0.7"},
		{"remote v6", nil, "[::1]:5123", "::1"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.7:1", "203.0.113.9"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"}, "10.0.0.7:1", "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := commonhttp.GetClientIP(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSecurityHeadersMiddleware_NoStoreOnAPI(t *testing.T) {
	h := commonhttp.SecurityHeadersMiddleware(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected no-store on API responses")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Header().Get("Cache-Control") != "" {
		t.Error("expected no cache directive outside the API")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected hardening headers everywhere")
	}
}

func TestHandleError_ContextErrors(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	rec := httptest.NewRecorder()
	commonhttp.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil), context.DeadlineExceeded, log)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504 for a deadline, got %d", rec.Code)
	}

	wrapped := commonerrors.NewInternalError("POST_LIST_FAILED", "internal server error", fmt.Errorf("query: %w", context.DeadlineExceeded))
	rec = httptest.NewRecorder()
	commonhttp.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil), wrapped, log)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504 for a wrapped deadline, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	commonhttp.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil), errors.New("boom"), log)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("expected generic 500, got %d %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec = httptest.NewRecorder()
	commonhttp.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil).WithContext(ctx), context.Canceled, log)
	if rec.Body.Len() != 0 {
		t.Errorf("expected nothing written for a cancelled client, got %s", rec.Body.String())
	}
}

func TestMaxRequestSizeMiddleware(t *testing.T) {
	h := commonhttp.MaxRequestSizeMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected GET to pass, got %d", rec.Code)
	}
}
