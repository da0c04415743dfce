package server_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/common/server"
)

func TestRun_ServesUntilCancelled(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := server.New("0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	hookRan := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, srv, ln, log, func(context.Context) error {
			hookRan <- struct{}{}
			return errors.New("hook failures are logged, not returned")
		})
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("unexpected body %q", body)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-hookRan:
	default:
		t.Error("expected shutdown hook to run")
	}
}

func TestRun_ListenError(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	srv := server.New("0", http.NotFoundHandler())
	srv.Addr = taken.Addr().String()

	if err := server.Run(context.Background(), srv, nil, log); err == nil {
		t.Fatal("expected an error when the address is in use")
	}
}
