package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusBucket(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusBucket(tt.code), "code %d", tt.code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.NotEmpty(t, body)

	// Gauges always appear; counters/histograms only after first observation.
	for _, name := range []string{
		"vigil_active_sessions",
		"vigil_active_websocket_clients",
	} {
		assert.True(t, strings.Contains(body, name), "expected metrics output to contain %s", name)
	}

	EventsAdmittedTotal.WithLabelValues("TAB_SWITCH").Inc()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, w.Body.String(), "vigil_events_admitted_total")
}

func TestEventsRejectedCounter(t *testing.T) {
	c := EventsRejectedTotal.WithLabelValues("validation")
	c.Inc()
	c.Inc()

	var m dto.Metric
	require.NoError(t, c.Write(&m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 2.0)
}

func TestMiddleware_RecordsMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var m dto.Metric
	counter := HTTPRequestsTotal.WithLabelValues("GET", "/test", "2xx")
	require.NoError(t, counter.Write(&m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)
}
