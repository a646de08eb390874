package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cheminee/search-engine/internal/infrastructure/monitoring/prometheus"
	"github.com/cheminee/search-engine/internal/logging"
)

// requestMetrics holds the counter/histogram pair every request records
// into, built once per Server and reused across the process lifetime.
type requestMetrics struct {
	collector prometheus.MetricsCollector
	requests  prometheus.CounterVec
	latency   prometheus.HistogramVec
}

func newRequestMetrics(logger logging.Logger) (*requestMetrics, error) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "cheminee",
		Subsystem:            "http",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &requestMetrics{
		collector: collector,
		requests:  collector.RegisterCounter("requests_total", "Total HTTP requests handled", "method", "path", "status"),
		latency:   collector.RegisterHistogram("request_duration_seconds", "Request latency in seconds", nil, "method", "path"),
	}, nil
}

// ensureMetrics lazily builds the Server's metrics on first use so a
// caller constructing Server via a struct literal never has to know about
// this unexported field.
func (s *Server) ensureMetrics() *requestMetrics {
	if s.metrics == nil {
		m, err := newRequestMetrics(s.Logger)
		if err != nil {
			return nil
		}
		s.metrics = m
	}
	return s.metrics
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	m := s.ensureMetrics()
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) metricsHandler() http.Handler {
	m := s.ensureMetrics()
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.collector.Handler()
}
