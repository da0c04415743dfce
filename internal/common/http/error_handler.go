package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/aiagents/collab-hub/internal/common/constants"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/httpmetrics"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

var ErrRequestTimeout = commonerrors.NewDomainError(
	"REQUEST_TIMEOUT",
	commonerrors.CategoryExternal,
	http.StatusGatewayTimeout,
	"the request took too long",
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	domainErr, isDomain := commonerrors.AsDomainError(err)
	if isDomain && domainErr.Category() != commonerrors.CategoryInternal {
		h.handleDomainError(w, r, domainErr)
		return
	}

	ctx := r.Context()
	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// the client is gone; nobody reads the response
		h.log.WithFields(ctx, logger.Fields{
			"path":   r.URL.Path,
			"action": "request_cancelled",
		}).Debug("request cancelled by client")
		return
	case errors.Is(err, context.DeadlineExceeded):
		h.handleDomainError(w, r, ErrRequestTimeout.WithCause(err))
		return
	case isDomain:
		h.handleDomainError(w, r, domainErr)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"path":   r.URL.Path,
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	h.countHTTPError(r, http.StatusInternalServerError)
	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, TraceIDFromContext(ctx))
}

func (h *ErrorHandler) countHTTPError(r *http.Request, status int) {
	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	domainErr := err
	if traceID != "" && err.TraceID() == "" {
		domainErr = err.WithTraceID(traceID)
	}

	status := domainErr.HTTPStatus()

	fields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"action":     "domain_error",
	}
	if domainErr.Category() == commonerrors.CategoryInternal {
		h.log.WithFields(ctx, fields).Errorf("domain error: %s", domainErr.Error())
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, fields).Debugf("domain error: %s", domainErr.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()

	h.countHTTPError(r, status)
	WriteErrorEnvelope(w, status, domainErr.Code(), domainErr.Message(), nil, domainErr.TraceID())
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	NewErrorHandler(log).HandleError(w, r, err)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
