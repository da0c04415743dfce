package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aiagents/collab-hub/internal/common/clock"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
)

// CircuitBreaker stops calling a failing backend for ResetAfter once
// Threshold consecutive failures have been recorded.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time

	threshold  int
	timeout    time.Duration
	resetAfter time.Duration
	name       string
	ignore     func(error) bool
	clock      clock.Clock
	log        *logger.Logger
}

type CircuitBreakerConfig struct {
	Threshold  int
	Timeout    time.Duration
	ResetAfter time.Duration
	Name       string
	// Ignore marks errors that are answers rather than outages, such as "not found".
	Ignore func(error) bool
	Clock  clock.Clock
	Logger *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	c := config.Clock
	if c == nil {
		c = clock.NewRealClock()
	}
	return &CircuitBreaker{
		threshold:  config.Threshold,
		timeout:    config.Timeout,
		resetAfter: config.ResetAfter,
		name:       config.Name,
		ignore:     config.Ignore,
		clock:      c,
		log:        config.Logger,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.isOpenLocked()
}

func (cb *CircuitBreaker) isOpenLocked() bool {
	if cb.failures < cb.threshold || cb.lastFailure.IsZero() {
		cb.setState(0)
		return false
	}

	if cb.clock.Since(cb.lastFailure) > cb.resetAfter {
		cb.failures = 0
		cb.lastFailure = time.Time{}
		cb.setState(0)
		return false
	}

	cb.setState(1)
	return true
}

func (cb *CircuitBreaker) setState(state float64) {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(state)
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil || (cb.ignore != nil && cb.ignore(err)) {
		cb.failures = 0
		cb.lastFailure = time.Time{}
		return
	}

	cb.failures++
	cb.lastFailure = cb.clock.Now()
	if cb.name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}
	if cb.log != nil {
		cb.log.Warnf("circuit breaker [%s]: failure recorded (%d/%d)", cb.name, cb.failures, cb.threshold)
	}
}

// Call runs fn unless the circuit is open, in which case it returns
// ErrCircuitOpen without calling fn.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if cb.IsOpen() {
		if cb.log != nil {
			cb.log.Warnf("circuit breaker [%s]: circuit is open, rejecting request", cb.name)
		}
		return commonerrors.ErrCircuitOpen
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	cb.record(err)
	return err
}
