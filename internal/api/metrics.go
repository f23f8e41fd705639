package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gilangaryo/converter-files/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry           *prometheus.Registry
	requestTotal       *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	rateLimitRejected  *prometheus.CounterVec
	conversionsTotal   *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	inputBytesTotal    *prometheus.CounterVec
	outputBytesTotal   *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_api_requests_total",
			Help: "Total HTTP requests handled by the API.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "converter_api_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_api_rate_limit_rejections_total",
			Help: "Total API requests rejected by rate limiting.",
		}, []string{"route"}),
		conversionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_conversions_total",
			Help: "Total conversions by source kind, target format and outcome.",
		}, []string{"source", "format", "outcome"}),
		conversionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "converter_conversion_duration_seconds",
			Help:    "Time spent decoding and encoding a single image.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source", "format"}),
		inputBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_input_bytes_total",
			Help: "Total uploaded bytes accepted for conversion.",
		}, []string{"source"}),
		outputBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_output_bytes_total",
			Help: "Total bytes returned by successful conversions.",
		}, []string{"format"}),
	}
	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.rateLimitRejected,
		m.conversionsTotal,
		m.conversionDuration,
		m.inputBytesTotal,
		m.outputBytesTotal,
	)
	return m
}

func (m *metrics) metricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routeLabel(r.URL.Path)
		status := statusLabel(recorder.status)

		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func (m *metrics) observeConversion(source, format, outcome string, elapsed time.Duration, inputBytes, outputBytes int) {
	m.conversionsTotal.WithLabelValues(source, format, outcome).Inc()
	m.conversionDuration.WithLabelValues(source, format).Observe(elapsed.Seconds())
	m.inputBytesTotal.WithLabelValues(source).Add(float64(inputBytes))
	if outcome == "success" {
		m.outputBytesTotal.WithLabelValues(format).Add(float64(outputBytes))
	}
}

func sourceLabel(req domain.ConversionRequest) string {
	if req.IsHEIF() {
		return "heif"
	}
	return "raster"
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var convErr *domain.Error
	if errors.As(err, &convErr) {
		return convErr.Kind.String() + "_error"
	}
	return "unexpected_error"
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

func routeLabel(path string) string {
	switch path {
	case ConvertPath, "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.status = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
