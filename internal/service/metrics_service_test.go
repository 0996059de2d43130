package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceAllocationOutcomes(t *testing.T) {
	m := NewMetricsService()
	m.ObserveAllocation(AllocationReserved, time.Millisecond)
	m.ObserveAllocation(AllocationFallback, time.Millisecond)
	m.ObserveAllocation(AllocationFallback, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocationOutcomes.WithLabelValues(AllocationReserved)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.allocationOutcomes.WithLabelValues(AllocationFallback)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.allocationOutcomes.WithLabelValues(AllocationSkipped)))
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
}

func TestMetricsServiceHandlerExposesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/curriculum", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveAllocation(AllocationSkipped, time.Millisecond)
	m.IncAuditDropped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
