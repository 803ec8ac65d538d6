package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpH "github.com/yungbote/neurobridge-risk/internal/http/handlers"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

func TestRouterServesHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics(prometheus.NewRegistry())
	r := NewRouter(RouterConfig{
		Log:           logger.Nop(),
		Metrics:       m,
		HealthHandler: httpH.NewHealthHandler(nil),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/api/does-not-exist", nil))
	require.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `risk_api_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.NotContains(t, body, `route="/healthcheck"`)
}

func TestRouterSkipsUnconfiguredHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/api/risk/distribution", nil))
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}
