package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBPoolAcquiredConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_db_pool_acquired_connections",
			Help: "Number of database connections in use",
		},
		[]string{"backend"},
	)

	DBPoolIdleConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_db_pool_idle_connections",
			Help: "Number of idle database connections",
		},
		[]string{"backend"},
	)

	DBPoolTotalConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_db_pool_total_connections",
			Help: "Total number of database connections",
		},
		[]string{"backend"},
	)

	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"backend", "operation", "table", "error_type"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open)",
		},
		[]string{"name"},
	)

	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_circuit_breaker_failures_total",
			Help: "Total number of failures recorded by circuit breakers",
		},
		[]string{"name"},
	)
)
