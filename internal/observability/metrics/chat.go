package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_chat_messages_total",
			Help: "Total number of chat messages appended by role",
		},
		[]string{"role"},
	)

	ChatResponseDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_chat_response_duration_seconds",
			Help:    "Time between a user message and its assistant response",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 2.5, 5, 10},
		},
	)

	ChatResponsesCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_chat_responses_cancelled_total",
			Help: "Total number of pending responses discarded before delivery",
		},
	)

	ChatConversationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_chat_conversations_expired_total",
			Help: "Total number of chat conversations closed because their session expired",
		},
	)

	ChatConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_chat_conversations_active",
			Help: "Number of in-memory chat conversations",
		},
	)

	ChatWebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_chat_websocket_connections_active",
			Help: "Number of active chat WebSocket connections",
		},
	)

	ChatEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_chat_events_dropped_total",
			Help: "Total number of chat events dropped for slow subscribers",
		},
	)
)
