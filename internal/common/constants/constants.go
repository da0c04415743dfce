package constants

import "time"

const (
	SessionSecretMinLength = 32
	PasswordHashCost       = 12

	MaxPostTitleLength    = 200
	MaxPostContentLength  = 10000
	MaxChatMessageLength  = 4000
	DefaultMaxRequestSize = 1 << 20

	DefaultHTTPPort                  = "8080"
	DefaultSessionTTL                = 24 * time.Hour
	DefaultSessionCookieName         = "session_token"
	DefaultPostStore                 = "sqlite"
	DefaultPostsDBPath               = "data/posts.db"
	DefaultUserDirectory             = "static"
	DefaultResponderDelay            = 2 * time.Second
	DefaultRequestTimeout            = 5 * time.Second
	DefaultRevocationCleanupInterval = 10 * time.Minute

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	CircuitBreakerThreshold  = 5
	CircuitBreakerTimeout    = 3 * time.Second
	CircuitBreakerResetAfter = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketWriteWait       = 10 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketPingPeriod      = (WebSocketPongWait * 9) / 10
	WebSocketMaxMessageSize  = 16 * 1024
	WebSocketSendBufSize     = 64

	ChatSubscriberBufSize = 16
	ChatSweepInterval     = 5 * time.Minute

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
