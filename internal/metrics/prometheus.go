package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savewise_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "savewise_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "savewise_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savewise_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"status"}, // status: success|invalid|error
	)

	InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "savewise_inference_duration_seconds",
			Help:    "Per-model inference latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"model", "status"},
	)

	// Persistence metrics
	PersistenceWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savewise_persistence_writes_total",
			Help: "Prediction record writes by backend and outcome",
		},
		[]string{"backend", "status"}, // status: stored|failed|unconfirmed|queued|dropped
	)

	PersistenceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "savewise_persistence_latency_seconds",
			Help:    "Storage operation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"backend", "operation"},
	)

	HistoryReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savewise_history_reads_total",
			Help: "History reads by the source that served them",
		},
		[]string{"source"}, // source: remote|fallback|none
	)

	RemoteStoreUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "savewise_remote_store_up",
			Help: "Whether the last remote store probe succeeded (1) or failed (0)",
		},
		[]string{"backend"},
	)

	// Advisor metrics
	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savewise_chat_requests_total",
			Help: "Total number of advisor chat requests",
		},
		[]string{"status"}, // status: success|no_data|rate_limited|error
	)

	ChatLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "savewise_chat_llm_latency_seconds",
			Help:    "LLM call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(WorkerExecutions)
		prometheus.MustRegister(WorkerDuration)
		prometheus.MustRegister(WorkerLastRun)

		prometheus.MustRegister(Predictions)
		prometheus.MustRegister(InferenceDuration)

		prometheus.MustRegister(PersistenceWrites)
		prometheus.MustRegister(PersistenceLatency)
		prometheus.MustRegister(HistoryReads)
		prometheus.MustRegister(RemoteStoreUp)

		prometheus.MustRegister(ChatRequests)
		prometheus.MustRegister(ChatLatency)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordInference records one model call
func RecordInference(model string, duration time.Duration, err error) {
	InferenceDuration.WithLabelValues(model, status(err)).Observe(duration.Seconds())
}

// RecordPersistence records a storage operation
func RecordPersistence(backend, operation string, duration time.Duration) {
	PersistenceLatency.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// SetRemoteStoreUp updates the probe gauge
func SetRemoteStoreUp(backend string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	RemoteStoreUp.WithLabelValues(backend).Set(v)
}
