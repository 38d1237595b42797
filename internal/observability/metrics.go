// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InteractionOps counts like/unlike/comment operations by outcome.
	InteractionOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_post_interactions_total",
		Help: "Total post interaction operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// SaveConflicts counts optimistic-concurrency conflicts observed while
	// persisting a post, labeled by whether the retry loop recovered.
	SaveConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_store_conflicts_total",
		Help: "Total version conflicts during post saves",
	}, []string{"resolution"})

	// RedisErrors counts Redis command failures by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
