package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vitrine-app/vitrine-backend/internal/telemetry"
)

func TestMetricsMiddleware_CountsMatchedRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/api/v1/uploads/:category", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/uploads/:category", "200"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/image", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/uploads/:category", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestMetricsMiddleware_UnmatchedRouteUsesNoRouteLabel(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())

	before := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "<no-route>", "404"))

	req := httptest.NewRequest(http.MethodGet, "/definitely/not/registered", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "<no-route>", "404"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}
