package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triagedesk/dashboard/internal/backend"
	"triagedesk/dashboard/internal/query"
)

var (
	_ backend.RequestObserver = (*Metrics)(nil)
	_ query.Observer          = (*Metrics)(nil)
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordPanic()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PanicsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PanicsTotal))
}

func TestObserveBackendRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveBackendRequest("GET /emails", 200, 20*time.Millisecond)
	m.ObserveBackendRequest("GET /emails/{id}", 404, time.Millisecond)
	m.ObserveBackendRequest("GET /emails", 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET /emails", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET /emails/{id}", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("backend_error", "backend")))
}

func TestCacheObserver(t *testing.T) {
	m := NewMetrics()
	c := query.New(query.WithObserver(m))

	c.Invalidate(query.EmailKey("E1"), query.KeyEmails)
	m.ObserveLookup(query.KeyEmails, false)
	m.ObserveLookup(query.EmailKey("E1"), true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheInvalidations.WithLabelValues("email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheInvalidations.WithLabelValues("emails")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("email", "hit")))
}

func TestHTTPHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest("GET", "/api/dashboard", "200", 5*time.Millisecond, 512)

	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `triagedesk_http_requests_total{endpoint="/api/dashboard",method="GET",status_code="200"} 1`)
	assert.Contains(t, rec.Body.String(), "triagedesk_system_uptime_seconds")
}
