// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sociopedia_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sociopedia_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FriendToggles counts friend edge mutations by outcome.
	FriendToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sociopedia_friend_toggles_total",
		Help: "Total number of friend toggles by action",
	}, []string{"action"})

	// LikeToggles counts like mutations by outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sociopedia_like_toggles_total",
		Help: "Total number of like toggles by action",
	}, []string{"action"})

	// AuthAttempts counts register and login attempts by result.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sociopedia_auth_attempts_total",
		Help: "Total number of authentication attempts by operation and result",
	}, []string{"operation", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordFriendToggle increments FriendToggles for the outcome of one toggle.
func RecordFriendToggle(added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	FriendToggles.WithLabelValues(action).Inc()
}

// RecordLikeToggle increments LikeToggles for the outcome of one toggle.
func RecordLikeToggle(liked bool) {
	action := "unliked"
	if liked {
		action = "liked"
	}
	LikeToggles.WithLabelValues(action).Inc()
}
