package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for
// assignment and reassignment outcomes.
type Collector struct {
	registry          *prometheus.Registry
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	assignmentTotal   *prometheus.CounterVec
	reassignmentTotal *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyops",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyops",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	assignmentTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyops",
		Subsystem: "assignment",
		Name:      "attempts_total",
		Help:      "Mission assignment attempts by outcome.",
	}, []string{"outcome"})

	reassignmentTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyops",
		Subsystem: "reassignment",
		Name:      "runs_total",
		Help:      "Urgent reassignment runs by outcome.",
	}, []string{"outcome"})

	for _, c := range []prometheus.Collector{requestDuration, requestTotal, assignmentTotal, reassignmentTotal} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	collector := &Collector{
		registry:          registry,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		assignmentTotal:   assignmentTotal,
		reassignmentTotal: reassignmentTotal,
	}

	return collector, nil
}

// RecordAssignment counts one assignment attempt by outcome.
func (c *Collector) RecordAssignment(outcome string) {
	c.assignmentTotal.WithLabelValues(outcome).Inc()
}

// RecordReassignment counts one reassignment run by outcome.
func (c *Collector) RecordReassignment(outcome string) {
	c.reassignmentTotal.WithLabelValues(outcome).Inc()
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
