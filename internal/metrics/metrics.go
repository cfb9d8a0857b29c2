package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for
// the analytics engine, on a private registry.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	analysesTotal    prometheus.Counter
	analysisDuration prometheus.Histogram
	ivSolvesTotal    *prometheus.CounterVec
	contractsScored  prometheus.Counter
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "greekscope",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greekscope",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	analysesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "greekscope",
		Subsystem: "engine",
		Name:      "analyses_total",
		Help:      "Total number of completed analysis runs.",
	})

	analysisDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "greekscope",
		Subsystem: "engine",
		Name:      "analysis_duration_seconds",
		Help:      "Latency distribution for analysis runs.",
		Buckets:   prometheus.DefBuckets,
	})

	ivSolvesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greekscope",
		Subsystem: "engine",
		Name:      "iv_solves_total",
		Help:      "Total number of implied volatility solves by outcome.",
	}, []string{"outcome"})

	contractsScored := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "greekscope",
		Subsystem: "engine",
		Name:      "contracts_scored_total",
		Help:      "Total number of contracts evaluated and scored.",
	})

	for _, c := range []prometheus.Collector{
		requestDuration, requestTotal,
		analysesTotal, analysisDuration, ivSolvesTotal, contractsScored,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	collector := &Collector{
		registry:         registry,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		analysesTotal:    analysesTotal,
		analysisDuration: analysisDuration,
		ivSolvesTotal:    ivSolvesTotal,
		contractsScored:  contractsScored,
	}

	return collector, nil
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

// ObserveAnalysis records one completed analysis run. Safe on a nil
// collector so callers can run without metrics wired.
func (c *Collector) ObserveAnalysis(duration time.Duration, contracts int) {
	if c == nil {
		return
	}
	c.analysesTotal.Inc()
	c.analysisDuration.Observe(duration.Seconds())
	c.contractsScored.Add(float64(contracts))
}

// ObserveIVSolve records one implied volatility solve with its outcome
// ("converged", "diverged", or "invalid").
func (c *Collector) ObserveIVSolve(outcome string) {
	if c == nil {
		return
	}
	c.ivSolvesTotal.WithLabelValues(outcome).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
