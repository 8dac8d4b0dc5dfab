package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)
	outboundRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Histogram of outbound http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)
	agentDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submission_agent_duration_seconds",
			Help:    "Histogram of biometric, ledger and backend agent call durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"agent", "outcome"},
	)
	submissionOutcomeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_outcome_total",
			Help: "Number of submissions reaching a terminal status, by status and failure code.",
		},
		[]string{"status", "code"},
	)
	submissionRetryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_retry_total",
			Help: "Number of scheduled submission retries, by failure code.",
		},
		[]string{"code"},
	)
	divergenceCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_divergence_total",
			Help: "Number of votes committed on the ledger but never confirmed by the backend.",
		},
	)
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	go func() {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus metrics. The collectors are created
// at package load so recording works before Init is called.
func registerMetrics() {
	prometheus.MustRegister(
		httpRequestDurationHistogram,
		outboundRequestDurationHistogram,
		agentDurationHistogram,
		submissionOutcomeCounter,
		submissionRetryCounter,
		divergenceCounter,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

// StartOutboundRequestTimer measures a call to the backend or the device bridge.
// A zero status code means the request never got a response.
func StartOutboundRequestTimer(operation string) func(statusCode int) {
	if operation == "" {
		operation = "unknown"
	}
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		outboundRequestDurationHistogram.WithLabelValues(operation, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

func StartAgentTimer(agent string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		duration := time.Since(startTime).Seconds()
		agentDurationHistogram.WithLabelValues(agent, outcome.String()).Observe(duration)
	}
}

func RecordSubmissionOutcome(status string, code string) {
	submissionOutcomeCounter.WithLabelValues(status, code).Inc()
}

func RecordSubmissionRetry(code string) {
	submissionRetryCounter.WithLabelValues(code).Inc()
}

func RecordDivergence() {
	divergenceCounter.Inc()
}
