package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/views/map", "200", "fallback"))
	RecordRequest("/views/map", 200, "fallback", 12*time.Millisecond)
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("/views/map", "200", "fallback"))
	assert.Equal(t, before+1, after)

	RecordRequest("/health", 200, "", time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(RequestsTotal.WithLabelValues("/health", "200", "none")))
}

func TestRecordFallback(t *testing.T) {
	RecordFallback("films", "request_failed")
	RecordFallback("films", "request_failed")
	assert.Equal(t, float64(2), testutil.ToFloat64(FallbackActivations.WithLabelValues("films", "request_failed")))
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("closed", "open", 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(BreakerState))
	assert.Equal(t, float64(1), testutil.ToFloat64(BreakerTransitions.WithLabelValues("closed", "open")))
}

func TestRecordSessionExpired(t *testing.T) {
	before := testutil.ToFloat64(SessionExpirations)
	RecordSessionExpired()
	assert.Equal(t, before+1, testutil.ToFloat64(SessionExpirations))
}

func TestRecordUpstream(t *testing.T) {
	counter := UpstreamRequests.WithLabelValues("GET /api/v1/etl/status", "http_5xx")
	before := testutil.ToFloat64(counter)
	RecordUpstream("GET", "/api/v1/etl/status", "http_5xx", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
