package service

import "github.com/aiagents/collab-hub/internal/observability/metrics"

const (
	outcomeSuccess            = "success"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeError              = "error"
)

func recordSignIn(outcome string) {
	metrics.SignInAttemptsTotal.WithLabelValues(outcome).Inc()
}

func incrementSessionsIssued() {
	metrics.SessionsIssued.Inc()
}

func incrementSessionsRefreshed() {
	metrics.SessionsRefreshed.Inc()
}

func incrementSessionsEnded() {
	metrics.SessionsEnded.Inc()
}

func incrementSessionValidationsFailed() {
	metrics.SessionValidationsFailed.Inc()
}
