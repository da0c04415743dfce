package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_posts_created_total",
			Help: "Total number of posts appended to the feed",
		},
	)

	PostsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_posts_rejected_total",
			Help: "Total number of post creations rejected by reason",
		},
		[]string{"reason"},
	)
)
