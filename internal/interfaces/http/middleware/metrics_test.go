package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics(t *testing.T) {
	m := NewHTTPMetrics("dropship")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/products/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "product")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/products/2", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsInFlight))

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `dropship_http_requests_total{method="GET",route="/api/v1/products/:id",status="200"} 2`)
	assert.Contains(t, body, "dropship_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestHTTPMetricsRegistriesAreIndependent(t *testing.T) {
	a := NewHTTPMetrics("dropship")
	b := NewHTTPMetrics("dropship")
	assert.NotSame(t, a.Registry(), b.Registry())
}
