package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsMiddleware records request latency, in-flight requests and error
// responses.
//
// Metrics:
//   - mudra_http_request_duration_seconds{method,path,status}: histogram
//   - mudra_http_requests_inflight: gauge
//   - mudra_http_request_errors_total{method,path,status}: counter (4xx/5xx)
type MetricsMiddleware struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
}

// NewMetricsMiddleware creates the collectors and registers them with reg.
func NewMetricsMiddleware(reg prometheus.Registerer) *MetricsMiddleware {
	m := &MetricsMiddleware{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mudra",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mudra",
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mudra",
			Name:      "http_request_errors_total",
			Help:      "HTTP requests that ended with a 4xx or 5xx status.",
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(m.reqDuration, m.reqInflight, m.reqErrors)
	return m
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps MJPEG streaming working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to the WebSocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer %T cannot hijack", r.ResponseWriter)
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Wrap instruments next. Requests are labelled by the mux pattern that
// matched them, so ids in paths do not create new series.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.reqInflight.Inc()
		defer m.reqInflight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.status)

		m.reqDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		if rec.status >= 400 {
			m.reqErrors.WithLabelValues(r.Method, path, status).Inc()
		}
	})
}
