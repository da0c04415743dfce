package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aiagents/collab-hub/internal/common/constants"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

// ShutdownHook runs after the listener stops accepting keep-alives and
// before in-flight requests are drained.
type ShutdownHook func(ctx context.Context) error

func New(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           handler,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
	}
}

// Run serves on ln until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts down. A nil ln listens on srv.Addr.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, log *logger.Logger, hooks ...ShutdownHook) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", srv.Addr); err != nil {
			return err
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", ln.Addr())
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	drainCtx, drainCancel := context.WithTimeout(shutdownCtx, constants.DrainTimeout)
	defer drainCancel()

	srv.SetKeepAlivesEnabled(false)

	for i, hook := range hooks {
		if err := hook(drainCtx); err != nil {
			log.Errorf("shutdown hook %d failed: %v", i, err)
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Infof("stopped gracefully")
	return nil
}
