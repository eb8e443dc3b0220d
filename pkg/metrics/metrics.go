package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roost_nodes_total",
			Help: "Total number of nodes by status",
		},
		[]string{"status"},
	)

	PodsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roost_pods_total",
			Help: "Total number of pods by status",
		},
		[]string{"status"},
	)

	CPUTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roost_cpu_total",
			Help: "Total CPU capacity across all nodes",
		},
	)

	CPUAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roost_cpu_available",
			Help: "Unreserved CPU across healthy nodes",
		},
	)

	// Scheduler metrics
	PlacementLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roost_placement_latency_seconds",
			Help:    "Time taken to place a pod in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PodsScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roost_pods_scheduled_total",
			Help: "Total number of pod placements committed",
		},
	)

	PodsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roost_pods_evicted_total",
			Help: "Total number of pod evictions",
		},
	)

	RescheduleAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roost_reschedule_attempts_total",
			Help: "Total number of pending pod placement retries",
		},
	)

	// Failure detector metrics
	DetectorSweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roost_detector_sweeps_total",
			Help: "Total number of failure detector sweeps",
		},
	)

	NodesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roost_nodes_failed_total",
			Help: "Total number of nodes marked unhealthy by the detector",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roost_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roost_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(PodsTotal)
	prometheus.MustRegister(CPUTotal)
	prometheus.MustRegister(CPUAvailable)
	prometheus.MustRegister(PlacementLatency)
	prometheus.MustRegister(PodsScheduled)
	prometheus.MustRegister(PodsEvicted)
	prometheus.MustRegister(RescheduleAttempts)
	prometheus.MustRegister(DetectorSweeps)
	prometheus.MustRegister(NodesFailed)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
