/*
Package metrics provides Prometheus metrics collection and exposition for Roost.

The metrics package defines and registers all Roost metrics using the Prometheus
client library, providing observability into cluster capacity, pod placement,
failure detection, and API performance. Metrics are exposed via HTTP endpoint
for scraping by Prometheus servers. The package also hosts the component health
registry backing the /health and /ready endpoints.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │          Prometheus Registry               │           │
	│  │  - Global DefaultRegistry                  │           │
	│  │  - MustRegister at package init            │           │
	│  │  - Automatic Go runtime metrics            │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │           Metric Categories                │           │
	│  │                                            │           │
	│  │  Cluster: Nodes, pods, CPU capacity        │           │
	│  │  Scheduler: Placement latency, outcomes    │           │
	│  │  Loops: Detector sweeps, reschedules       │           │
	│  │  API: Request count, duration              │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │          HTTP Metrics Endpoint             │           │
	│  │  - Path: /metrics                          │           │
	│  │  - Format: Prometheus text exposition      │           │
	│  │  - Handler: promhttp.Handler()             │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Metrics Catalog

Cluster Metrics:

roost_nodes_total{status}:
  - Type: Gauge
  - Description: Total nodes by status (healthy/unhealthy)
  - Example: roost_nodes_total{status="healthy"} 5

roost_pods_total{status}:
  - Type: Gauge
  - Description: Total pods by status (pending/running)
  - Example: roost_pods_total{status="running"} 30

roost_cpu_total:
  - Type: Gauge
  - Description: Sum of total CPU across all registered nodes

roost_cpu_available:
  - Type: Gauge
  - Description: Sum of unreserved CPU across healthy nodes

Scheduler Metrics:

roost_placement_latency_seconds:
  - Type: Histogram
  - Description: Time from launch request to node assignment
  - Buckets: Default Prometheus buckets

roost_pods_scheduled_total:
  - Type: Counter
  - Description: Total pods successfully placed on a node

roost_pods_evicted_total:
  - Type: Counter
  - Description: Total pods evicted back to pending

Loop Metrics:

roost_detector_sweeps_total:
  - Type: Counter
  - Description: Total failure detector sweeps completed

roost_nodes_failed_total:
  - Type: Counter
  - Description: Total nodes marked unhealthy by the detector

roost_reschedule_attempts_total:
  - Type: Counter
  - Description: Total pending pods examined by the rescheduler

API Metrics:

roost_api_requests_total{method, status}:
  - Type: Counter
  - Description: Total API requests by HTTP method and status
  - Example: roost_api_requests_total{method="POST",status="200"} 100

roost_api_request_duration_seconds{method}:
  - Type: Histogram
  - Description: API request duration in seconds
  - Buckets: 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10

# Usage

Updating Gauge Metrics:

	import "github.com/roost-io/roost/pkg/metrics"

	// Set absolute value
	metrics.NodesTotal.WithLabelValues("healthy").Set(5)
	metrics.CPUAvailable.Set(42)

Updating Counter Metrics:

	metrics.PodsScheduled.Inc()
	metrics.APIRequestsTotal.WithLabelValues("POST", "200").Inc()

Recording Histogram Observations:

	// Direct observation
	metrics.PlacementLatency.Observe(0.002)

	// Using Timer helper
	timer := metrics.NewTimer()
	// ... place the pod ...
	timer.ObserveDuration(metrics.PlacementLatency)

Using Timer with Labels:

	timer := metrics.NewTimer()
	// ... handle the request ...
	timer.ObserveDurationVec(metrics.APIRequestDuration, "POST")

Exposing the Endpoint:

	http.Handle("/metrics", metrics.Handler())
	http.ListenAndServe(":8080", nil)

# Health Checking

The package also tracks per-component health for the HTTP probe endpoints:

	metrics.RegisterComponent("store", true, "")
	metrics.UpdateComponent("store", false, "bolt open failed")

	http.Handle("/health", metrics.HealthHandler())
	http.Handle("/ready", metrics.ReadyHandler())
	http.Handle("/live", metrics.LivenessHandler())

Readiness requires every critical component (store, manager, api) to be
registered and healthy. Health reports any registered component; liveness
only proves the process is running.

# Integration Points

This package integrates with:

  - pkg/manager: Updates cluster gauges, scheduling counters, and the
    sweep counters driven by the background loops
  - pkg/api: Instruments request count and duration
  - Prometheus: Scrapes /metrics endpoint

# Design Patterns

Package Init Registration:
  - All metrics registered in init() function
  - MustRegister panics on duplicate registration
  - Ensures metrics available before main()

Label Discipline:
  - Use WithLabelValues for cardinality-bounded labels
  - Avoid high-cardinality labels (node IDs, pod IDs)
  - Keep label count low

Timer Pattern:
  - Create timer at operation start
  - Defer or explicitly call ObserveDuration
  - Supports both simple and vector histograms

# Monitoring

Prometheus Queries (PromQL):

Cluster Health:
  - Healthy nodes: roost_nodes_total{status="healthy"}
  - Down nodes: roost_nodes_total{status="unhealthy"}
  - CPU utilization: 1 - (roost_cpu_available / roost_cpu_total)

Scheduler Performance:
  - Placement rate: rate(roost_pods_scheduled_total[1m])
  - p95 placement latency: histogram_quantile(0.95, roost_placement_latency_seconds_bucket)
  - Pending backlog: roost_pods_total{status="pending"}

API Performance:
  - Request rate: rate(roost_api_requests_total[1m])
  - Error rate: rate(roost_api_requests_total{status=~"5.."}[1m])
  - p99 latency: histogram_quantile(0.99, roost_api_request_duration_seconds_bucket)

Failure Detection:
  - Node failure rate: rate(roost_nodes_failed_total[10m])
  - Sweep liveness: rate(roost_detector_sweeps_total[5m]) > 0

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
*/
package metrics
