package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
)

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewMetrics("test")

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestCronJobAndHandler(t *testing.T) {
	m := metrics.NewMetrics("test")

	called := false
	m.CronJob("consolidate", func() { called = true })
	m.RecordNotification("ok")

	assert.True(t, called)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CronRuns.WithLabelValues("consolidate")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `test_notifications_total{result="ok"} 1`))
}
