package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWebhookEvent(t *testing.T) {
	before := testutil.ToFloat64(webhookEvents.WithLabelValues("checkout.session.completed", OutcomeDuplicate))
	RecordWebhookEvent("checkout.session.completed", OutcomeDuplicate)
	after := testutil.ToFloat64(webhookEvents.WithLabelValues("checkout.session.completed", OutcomeDuplicate))
	assert.Equal(t, before+1, after)

	RecordWebhookEvent("", OutcomeRejected)
	assert.GreaterOrEqual(t, testutil.ToFloat64(webhookEvents.WithLabelValues("unknown", OutcomeRejected)), float64(1))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware)
	r.GET("/v1/providers/:id/routing", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/providers/prov_42/routing", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.GreaterOrEqual(t,
		testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/v1/providers/:id/routing", "204")),
		float64(1))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marketplace_http_requests_total")
}
