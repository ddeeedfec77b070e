package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: combined-set cache hits (the fast path).
	CombinedHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_combined_cache_hits_total",
			Help: "Total number of combined-set cache hits.",
		},
	)

	// Counter: per-symptom cache hits.
	PerSymptomHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_per_symptom_cache_hits_total",
			Help: "Total number of per-symptom cache hits.",
		},
	)

	// Counter: embedding service calls.
	EmbeddingCallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_embedding_calls_total",
			Help: "Total number of calls to the embedding service.",
		},
	)

	// Counter: vector index queries, labelled by corpus.
	VectorQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_vector_queries_total",
			Help: "Total number of vector index queries.",
		},
		[]string{"corpus"},
	)

	// Counter: background combined-entry refreshes by outcome.
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_background_refreshes_total",
			Help: "Total number of background full-set refreshes.",
		},
		[]string{"outcome"}, // ok | error | dropped
	)

	// Histogram: gateway HTTP latency in seconds.
	GatewayLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_latency_seconds",
			Help:    "HTTP request latency for the gateway in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		CombinedHitsTotal,
		PerSymptomHitsTotal,
		EmbeddingCallsTotal,
		VectorQueriesTotal,
		RefreshesTotal,
		GatewayLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures gateway latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// capture status code
		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Seconds()

		GatewayLatencySeconds.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(duration)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
