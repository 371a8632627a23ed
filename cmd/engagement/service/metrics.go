package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToggleTotal edge: like | follow；outcome: created | removed | error
	ToggleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_toggle_total",
			Help: "Total number of like/follow toggles by outcome",
		},
		[]string{"edge", "outcome"},
	)

	// ToggleRetryTotal 唯一索引冲突后的重试次数
	ToggleRetryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_toggle_retry_total",
			Help: "Toggles retried after a uniqueness conflict",
		},
		[]string{"edge"},
	)

	DegradedBranchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_degraded_branch_total",
			Help: "Composition branches zeroed or omitted because they failed or timed out",
		},
		[]string{"operation", "branch"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamhub_operation_duration_seconds",
			Help:    "Duration of aggregation and composition operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)
)

func observe(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
