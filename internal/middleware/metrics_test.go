package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"emailmcp-gateway/internal/metrics"
)

func TestMetricsMiddleware_RecordsRequests(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/api/reports/summary", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "200", "/api/reports"))
	if got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
}

func TestMetricsMiddleware_ErrorStatusFromHTTPError(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/api/users/u1/profile", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/profile", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "404", "/api/users"))
	if got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
}
