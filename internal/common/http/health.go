package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/aiagents/collab-hub/internal/common/logger"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports 200 when every check passes and 503 otherwise.
func HealthHandler(log *logger.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return RequireMethod(http.MethodGet)(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				log.WithFields(ctx, logger.Fields{
					"check":  name,
					"action": "health_check_failed",
				}).Warnf("health check %s failed: %v", name, err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		WriteJSON(w, status, resp)
	})
}
