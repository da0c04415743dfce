package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aiagents/collab-hub/internal/auth/cleanup"
	authhttp "github.com/aiagents/collab-hub/internal/auth/http"
	authrepo "github.com/aiagents/collab-hub/internal/auth/repository"
	authservice "github.com/aiagents/collab-hub/internal/auth/service"
	chathttp "github.com/aiagents/collab-hub/internal/chat/http"
	"github.com/aiagents/collab-hub/internal/chat/responder"
	chatservice "github.com/aiagents/collab-hub/internal/chat/service"
	"github.com/aiagents/collab-hub/internal/chat/websocket"
	"github.com/aiagents/collab-hub/internal/common/bootstrap"
	"github.com/aiagents/collab-hub/internal/common/clock"
	"github.com/aiagents/collab-hub/internal/common/constants"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/common/server"
	posthttp "github.com/aiagents/collab-hub/internal/post/http"
	postservice "github.com/aiagents/collab-hub/internal/post/service"
	"github.com/aiagents/collab-hub/internal/shell"
)

const serviceName = "hub"

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewApp(ctx, serviceName)
	if err != nil {
		logger.GetInstance().Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	cfg := app.Config
	appLog := app.Log
	clk := clock.NewRealClock()
	ids := commoncrypto.NewUUIDGenerator()

	revoked := authrepo.NewMemoryRevokedSessionRepository(clk)
	go cleanup.StartRevokedSessionCleanup(ctx, revoked, cfg.RevocationCleanupInterval, appLog)

	issuer := authservice.NewTokenIssuer(cfg.SessionSecret, ids, cfg.SessionTTL, clk)
	sessions := authservice.NewSessionManager(app.Directory, issuer, revoked, ids, clk, appLog)

	chatSvc := chatservice.NewChatService(responder.NewTemplateResponder(cfg.ResponderDelay, clk), ids, clk, appLog)
	sessions.OnSessionEnd(chatSvc.OnSessionEnd)
	go chatSvc.StartExpiredSweep(ctx, constants.ChatSweepInterval)

	feed := postservice.NewFeedService(app.Posts, commoncrypto.NewTimeOrderedGenerator(), clk, appLog)

	cookies := authhttp.CookieConfig{Name: cfg.SessionCookieName, Secure: cfg.SecureCookies}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(appLog, app.HealthChecks()))
	mux.Handle("/metrics", promhttp.Handler())

	authhttp.NewHandler(sessions, authhttp.Config{
		Cookies:        cookies,
		DemoAccounts:   app.DemoAccounts,
		DemoEnabled:    cfg.DemoAccountsEnabled,
		RequestTimeout: cfg.RequestTimeout,
	}, appLog).Register(mux)
	posthttp.NewHandler(feed, cfg.RequestTimeout, appLog).Register(mux)
	chathttp.NewHandler(chatSvc, appLog).Register(mux)
	mux.Handle("/ws/chat", websocket.NewHandler(chatSvc, appLog))
	shell.Register(mux)

	sessionMw := authhttp.NewSessionMiddleware(sessions, cookies, appLog)
	handler := commonhttp.BuildBaseHandler(serviceName, appLog, mux, sessionMw.Wrap)

	err = server.Run(ctx, server.New(cfg.HTTPPort, handler), nil, appLog,
		chatSvc.Shutdown,
		func(context.Context) error {
			cancel()
			return nil
		},
	)
	if err != nil {
		appLog.Errorf("server stopped: %v", err)
	}
}
