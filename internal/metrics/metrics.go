// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 网关请求
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecity_gateway_requests_total",
			Help: "Total gateway requests by route, status and response source",
		},
		[]string{"route", "status", "source"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinecity_gateway_request_duration_seconds",
			Help:    "Gateway request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// 后端调用
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecity_upstream_requests_total",
			Help: "Backend calls by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinecity_upstream_request_duration_seconds",
			Help:    "Backend call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// 示例数据替换
	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecity_fallback_activations_total",
			Help: "Times a view showed sample data instead of live data",
		},
		[]string{"dataset", "reason"},
	)

	SessionExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinecity_session_expirations_total",
			Help: "Sessions cleared after the backend answered 401",
		},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinecity_upstream_breaker_state",
			Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecity_upstream_breaker_transitions_total",
			Help: "Upstream circuit breaker state changes",
		},
		[]string{"from", "to"},
	)
)

// RecordRequest records one finished gateway request
func RecordRequest(route string, status int, source string, duration time.Duration) {
	if source == "" {
		source = "none"
	}
	RequestsTotal.WithLabelValues(route, strconv.Itoa(status), source).Inc()
	RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordUpstream records one finished backend call. It matches httpclient.Observer.
func RecordUpstream(method, path, outcome string, duration time.Duration) {
	route := method + " " + path
	UpstreamRequests.WithLabelValues(route, outcome).Inc()
	UpstreamDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordFallback counts a sample-data substitution
func RecordFallback(dataset, reason string) {
	FallbackActivations.WithLabelValues(dataset, reason).Inc()
}

// RecordSessionExpired counts a 401-driven logout
func RecordSessionExpired() {
	SessionExpirations.Inc()
}

// RecordBreakerTransition updates the breaker gauge. state is 0, 1 or 2.
func RecordBreakerTransition(from, to string, state int) {
	BreakerTransitions.WithLabelValues(from, to).Inc()
	BreakerState.Set(float64(state))
}
