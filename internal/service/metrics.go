package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noteWriteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fns",
		Name:      "note_write_total",
		Help:      "Note write operations by operation and result.",
	}, []string{"op", "result"})

	shareResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fns",
		Name:      "share_resolve_total",
		Help:      "Public share lookups by address kind and result.",
	}, []string{"kind", "result"})

	shareResolveSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fns",
		Name:      "share_resolve_duration_seconds",
		Help:      "Latency of public share lookups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	shareTokenCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fns",
		Name:      "share_token_collisions_total",
		Help:      "Share token allocations retried after a unique index collision.",
	})
)

// writeResult 将写操作结果归类为指标标签
func writeResult(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
