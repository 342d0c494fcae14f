package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QA request outcomes recorded against qa_requests_total.
const (
	OutcomeAnswered      = "answered"
	OutcomeUnknownMember = "unknown_member"
	OutcomeNoContext     = "no_context"
	OutcomeError         = "error"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	qaRequestsTotal *prometheus.CounterVec
	qaSnippets      *prometheus.HistogramVec
	qaDuration      *prometheus.HistogramVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memberqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "memberqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "memberqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	qaRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memberqa",
			Subsystem: "qa",
			Name:      "requests_total",
			Help:      "Total QA requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	qaSnippets := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "memberqa",
			Subsystem: "qa",
			Name:      "retrieved_snippets",
			Help:      "Distribution of retrieved snippets per answered request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	qaDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "memberqa",
			Subsystem: "qa",
			Name:      "duration_seconds",
			Help:      "End-to-end QA duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		qaRequestsTotal,
		qaSnippets,
		qaDuration,
	)

	return &ServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		qaRequestsTotal: qaRequestsTotal,
		qaSnippets:      qaSnippets,
		qaDuration:      qaDuration,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// RecordQA records one finished QA request.
func (m *ServerMetrics) RecordQA(service, outcome string, snippetCount int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.qaRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.qaDuration.WithLabelValues(service).Observe(duration.Seconds())
	if outcome == OutcomeAnswered || outcome == OutcomeNoContext {
		m.qaSnippets.WithLabelValues(service).Observe(float64(snippetCount))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
