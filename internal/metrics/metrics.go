package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shelf"

// Outcome labels of BookmarkOperations.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeInvalid         = "invalid_input"
	OutcomeNotFound        = "not_found"
	OutcomeForbidden       = "forbidden"
	OutcomeFailed          = "failed"
)

var (
	BookmarkOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "bookmark_operations_total", Help: "Bookmark service calls by operation and outcome."},
		[]string{"op", "outcome"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "store_call_seconds", Help: "Latency of bookmark store calls.", Buckets: prometheus.DefBuckets},
		[]string{"driver", "call"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by key kind."},
		[]string{"kind"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by key kind."},
		[]string{"kind"},
	)
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "logins_total", Help: "Login attempts by method and outcome."},
		[]string{"method", "outcome"},
	)
)

// RegisterCollectors registers every shelf collector on reg.
// Call it once per registry.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(BookmarkOperations)
	reg.MustRegister(StoreLatency)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Logins)
}
