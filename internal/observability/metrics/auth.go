package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignInAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_signin_attempts_total",
			Help: "Total number of sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_sessions_issued_total",
			Help: "Total number of session tokens issued at sign-in",
		},
	)

	SessionsRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_sessions_refreshed_total",
			Help: "Total number of session tokens re-issued by sliding refresh",
		},
	)

	SessionsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_sessions_ended_total",
			Help: "Total number of sessions ended by sign-out",
		},
	)

	SessionValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_session_validations_failed_total",
			Help: "Total number of presented session tokens that failed validation",
		},
	)

	RevokedSessionsCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_revoked_sessions_cleanup_deleted_total",
			Help: "Total number of expired revocation entries deleted during cleanup",
		},
	)
)
