package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBackend("/api/stats", 200, time.Millisecond)
		m.PageRendered("dashboard", "fetch")
		m.ToastQueued("error")
		m.SetPageSessions(3)
		m.SessionsSwept(1)
	})
}

func TestMetrics_ExposedByHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBackend("/api/tickets", 200, 20*time.Millisecond)
	m.ObserveBackend("/api/tickets", 0, time.Second)
	m.PageRendered("dashboard", "cache")
	m.SetPageSessions(2)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `smartdesk_backend_requests_total{endpoint="/api/tickets",status="200"} 1`)
	assert.Contains(t, text, `smartdesk_backend_requests_total{endpoint="/api/tickets",status="error"} 1`)
	assert.Contains(t, text, `smartdesk_page_renders_total{page="dashboard",source="cache"} 1`)
	assert.Contains(t, text, "smartdesk_page_sessions 2")
}
