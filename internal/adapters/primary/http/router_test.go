package http

import (
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/secondary/smartdesk"
	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/core/services"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/metrics"
	"github.com/lorrc/smartdesk-web/web"
)

func TestRouter_StaticAssets(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/static/js/app.js", "/static/js/charts.js", "/static/css/app.css"} {
		rec := app.get(path, "")
		assert.Equal(t, stdhttp.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Body.String(), path)
	}

	rec := app.get("/static/missing.js", "")
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestRouter_RequestID(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/health/live", "")
	assert.NotEmpty(t, rec.Header().Get(mw.RequestIDHeader))
}

func TestRouter_PagesAreNotCached(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

// newMeteredRouter builds the router with metrics, a showcase and a form limiter.
func newMeteredRouter(t *testing.T) (stdhttp.Handler, *prometheus.Registry) {
	t.Helper()

	fake := newFakeBackend()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := smartdesk.NewClient(srv.URL, time.Second, logger, smartdesk.WithMetrics(m))

	templates, err := web.Templates()
	require.NoError(t, err)
	renderer, err := NewRenderer(templates, m, logger)
	require.NoError(t, err)

	showcaseFile, err := web.Showcase()
	require.NoError(t, err)
	defer showcaseFile.Close()
	showcase, err := services.LoadShowcase(showcaseFile)
	require.NoError(t, err)

	notifier := newTestNotifier(testToastToken)
	errorHandler := NewErrorHandler(logger, renderer)
	desk := services.NewTicketDesk(client, services.NewPageSessionStore(time.Minute, services.WithSessionObserver(m)), logger)

	limiter := mw.NewRateLimiter(mw.RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 2, CleanupInterval: time.Minute, TTL: time.Minute})
	t.Cleanup(limiter.Stop)

	router := NewRouter(RouterConfig{
		Logger:      logger,
		Guard:       mw.NewGuard(client, logger),
		FormTokens:  mw.NewFormTokens(auth.NewTokenManager(testFormSecret, time.Hour), logger),
		Landing:     NewLandingHandler(client, showcase, renderer, notifier, logger),
		Auth:        NewAuthHandler(client, renderer, notifier, logger),
		Dashboard:   NewDashboardHandler(desk, renderer, notifier, errorHandler, logger),
		MyTickets:   NewMyTicketsHandler(desk, renderer, notifier, errorHandler, logger),
		Analytics:   NewAnalyticsHandler(client, services.NewChartBuilder(nil), renderer, notifier, errorHandler, logger),
		Health:      NewHealthHandler(client, "test"),
		Metrics:     metrics.Handler(reg),
		FormLimiter: limiter,
	})
	return router, reg
}

func TestRouter_ShowcaseAndMetrics(t *testing.T) {
	router, _ := newMeteredRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil))
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<canvas id="showcaseCategoryChart"`)
	assert.Contains(t, body, `"tickSuffix":"h"`)
	assert.Contains(t, body, "/static/js/charts.js")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil))
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `smartdesk_page_renders_total{page="landing",source="static"} 1`)
	assert.Contains(t, rec.Body.String(), `smartdesk_backend_requests_total{endpoint="/api/me",status="401"} 1`)
}

func TestRouter_FormRateLimit(t *testing.T) {
	router, _ := newMeteredRouter(t)

	token, err := auth.NewTokenManager(testFormSecret, time.Hour).GenerateFormToken("")
	require.NoError(t, err)
	form := url.Values{mw.FormTokenField: {token}}.Encode()

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(stdhttp.MethodPost, "/analyze", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "198.51.100.7:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{stdhttp.StatusUnprocessableEntity, stdhttp.StatusUnprocessableEntity, stdhttp.StatusTooManyRequests}, codes)

	// Page views are not limited.
	req := httptest.NewRequest(stdhttp.MethodGet, "/login", nil)
	req.RemoteAddr = "198.51.100.7:5000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}
