// Package metrics 进程级 prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "redflix"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)

	// AuthFlowTotal login/register/forgot/reset/verify 结果
	AuthFlowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "auth_flow_total", Help: "Auth flow outcomes"},
		[]string{"flow", "outcome"},
	)
	SessionRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "session_rejected_total", Help: "Rejected session resolutions by reason"},
		[]string{"reason"},
	)
	RoleDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "role_gate_denied_total", Help: "Role gate denials by resource"},
		[]string{"resource"},
	)
	CacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_lookups_total", Help: "Read-through cache lookups"},
		[]string{"result"},
	)
)

