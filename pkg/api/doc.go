/*
Package api implements the roost HTTP API server.

The api package is the primary interface for external clients (CLI,
scripts, dashboards) to interact with the cluster. It exposes the
manager's operations as a JSON-over-HTTP API, streams cluster events,
and serves the operational endpoints (health probes and Prometheus
exposition).

# Architecture

The API server is the gateway to the control plane:

	┌──────────────────── CLIENT (CLI/curl) ─────────────────────┐
	│                                                            │
	│  ┌──────────────────────────────────────────────┐          │
	│  │         HTTP Client (JSON bodies)            │          │
	│  └──────────────────┬───────────────────────────┘          │
	└─────────────────────┼──────────────────────────────────────┘
	                      │ HTTP (port 8080)
	                      │
	┌─────────────────────▼──── CONTROL PLANE ───────────────────┐
	│                                                            │
	│  ┌──────────────────────────────────────────────┐          │
	│  │          HTTP API Server (pkg/api)           │          │
	│  │  - Request validation and defaults           │          │
	│  │  - Error → status code mapping               │          │
	│  │  - Metrics instrumentation                   │          │
	│  │  - Event streaming                           │          │
	│  └──────────────────┬───────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼───────────────────────────┐          │
	│  │              Manager                         │          │
	│  │  - Single critical section                   │          │
	│  │  - Registries + scheduler + leader           │          │
	│  └──────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────────┘

# Endpoints

Cluster API (JSON in, JSON out):

	POST   /v1/nodes                  Register a node {id, cpu}
	GET    /v1/nodes                  List nodes
	POST   /v1/nodes/scale            Create N nodes {count}
	GET    /v1/nodes/{id}             Get one node
	DELETE /v1/nodes/{id}             Remove a node (evicts its pods)
	POST   /v1/nodes/{id}/heartbeat   Refresh heartbeat, resurrect if down
	POST   /v1/nodes/{id}/fail        Mark unhealthy, evict pods
	POST   /v1/nodes/{id}/recover     Mark healthy again
	POST   /v1/pods                   Launch a pod {id, cpu}
	GET    /v1/pods                   List pods
	GET    /v1/pods/{id}              Get one pod
	GET    /v1/leader                 Current leader id, or "none"
	PUT    /v1/strategy               Set placement strategy {strategy}
	GET    /v1/strategy               Current placement strategy
	GET    /v1/metrics                Capacity snapshot (JSON)
	GET    /v1/events                 Stream events as JSON lines

Operational endpoints:

	GET /health      Overall health with component detail
	GET /ready       Readiness (503 until critical components are up)
	GET /live        Liveness (200 while the process runs)
	GET /metrics     Prometheus exposition

# Request Defaults

A node registered without a cpu value receives the configured default
capacity (8 unless overridden). A pod launched without a cpu value
requests 1. Omitting an id is an error, never defaulted.

# Error Responses

Every error is a JSON envelope with a human-readable message and a
stable machine-readable code:

	{"error": "pod big-1 needs 8 cpu on one node: no feasible node", "code": "no_feasible_node"}

Codes and statuses:

	missing_field           400  Required field absent or invalid
	bad_json                400  Body is not valid JSON
	no_feasible_node        400  Pod admitted, pending; fits no single node
	node_not_found          404  Unknown node id
	pod_not_found           404  Unknown pod id
	not_found               404  Unknown route
	method_not_allowed      405  Wrong HTTP method for the route
	duplicate_node          409  Node id already registered
	duplicate_pod           409  Pod id already launched
	insufficient_capacity   422  Request exceeds live cluster capacity
	internal_error          500  Everything else

The no_feasible_node case deserves attention: the pod WAS admitted and
persisted. It sits pending and the rescheduler retries it every cycle,
so a client seeing this 400 should not re-submit.

# Usage

Creating and starting the server:

	mgr, err := manager.NewManager(cfg, store, nil)
	if err != nil {
		log.Fatal(err)
	}

	srv := api.NewServer(mgr)

	// Start blocks until Stop is called
	if err := srv.Start("127.0.0.1:8080"); err != nil {
		log.Fatal(err)
	}

Consuming the event stream:

	resp, _ := http.Get("http://127.0.0.1:8080/v1/events")
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var event events.Event
		json.Unmarshal(scanner.Bytes(), &event)
		fmt.Println(event.Type, event.Message)
	}

# Middleware

Requests pass through a small chain, outermost first:

  - Recovery: turns handler panics into 500s instead of crashing
  - Logging: per-request debug log (method, path, status, duration)
  - Instrument: roost_api_requests_total{method,status} and
    roost_api_request_duration_seconds{method}

The response wrapper used to capture status codes also forwards Flush,
so event streaming works through the chain.

# Timeouts

Only ReadHeaderTimeout is set on the server. A write timeout would
sever /v1/events streams, which stay open for the life of the client.

# Integration Points

This package integrates with:

  - pkg/manager: Processes all API requests
  - pkg/metrics: Instrumentation and health/readiness handlers
  - pkg/events: Event broker backing /v1/events
  - pkg/types: Core data model and error taxonomy
  - pkg/client: Go client for this API
*/
package api
