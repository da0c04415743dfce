package http

import (
	"net/http"

	"github.com/aiagents/collab-hub/internal/common/constants"
	"github.com/aiagents/collab-hub/internal/common/httpmetrics"
	"github.com/aiagents/collab-hub/internal/common/logger"
)

// BuildBaseHandler wraps handler in the middleware chain shared by every
// route. inner middlewares run last, closest to the handler, in the order
// given.
func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler, inner ...func(http.Handler) http.Handler) http.Handler {
	for i := len(inner) - 1; i >= 0; i-- {
		handler = inner[i](handler)
	}

	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(TraceIDMiddleware(recovery(maxRequestSize(metrics.Wrap(handler)))))
}
