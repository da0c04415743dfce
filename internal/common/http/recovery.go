package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/aiagents/collab-hub/internal/common/logger"
)

// RecoveryMiddleware turns a handler panic into a 500. http.ErrAbortHandler
// is re-raised so the server aborts the response as it normally would.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"method": r.Method,
					"action": "panic_recovered",
				}).Criticalf("panic recovered: %v\n%s", rec, debug.Stack())
				WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, TraceIDFromContext(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
