package middleware

import (
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

type MetricsMiddleware struct {
	requestCounter     *metrics.Counter
	responseTimeHist   *metrics.Histogram
	responseSizeHist   *metrics.Histogram
	statusCodeCounters map[int]*metrics.Counter
}

func NewMetricsMiddleware() *MetricsMiddleware {
	m := &MetricsMiddleware{
		requestCounter:     metrics.GetOrCreateCounter("http_requests_total"),
		responseTimeHist:   metrics.GetOrCreateHistogram("http_response_time_seconds"),
		responseSizeHist:   metrics.GetOrCreateHistogram("http_response_size_bytes"),
		statusCodeCounters: make(map[int]*metrics.Counter),
	}

	for _, code := range []int{200, 400, 404, 422, 429, 500, 502} {
		m.statusCodeCounters[code] = metrics.GetOrCreateCounter(
			`http_response_status_total{code="` + strconv.Itoa(code) + `"}`,
		)
	}

	return m
}

// Handler records request count, duration, response size and status.
func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestCounter.Inc()

		c.Next()

		m.responseTimeHist.Update(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.responseSizeHist.Update(float64(size))
		}
		if counter, exists := m.statusCodeCounters[c.Writer.Status()]; exists {
			counter.Inc()
		}
	}
}

// Expose writes the Prometheus exposition for GET /metrics.
func (m *MetricsMiddleware) Expose(c *gin.Context) {
	metrics.WritePrometheus(c.Writer, true)
}
