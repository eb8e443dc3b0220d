package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/roost-io/roost/pkg/log"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/roost-io/roost/pkg/metrics"
	"github.com/roost-io/roost/pkg/types"
	"github.com/rs/zerolog"
)

// Server exposes the control plane over HTTP with JSON bodies.
type Server struct {
	manager *manager.Manager
	mux     *http.ServeMux
	http    *http.Server
	logger  zerolog.Logger
}

// NewServer creates a new API server
func NewServer(mgr *manager.Manager) *Server {
	s := &Server{
		manager: mgr,
		mux:     http.NewServeMux(),
		logger:  log.WithComponent("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Cluster API
	s.mux.HandleFunc("/v1/nodes", s.handleNodes)
	s.mux.HandleFunc("/v1/nodes/scale", s.handleScale)
	s.mux.HandleFunc("/v1/nodes/", s.handleNode)
	s.mux.HandleFunc("/v1/pods", s.handlePods)
	s.mux.HandleFunc("/v1/pods/", s.handlePod)
	s.mux.HandleFunc("/v1/strategy", s.handleStrategy)
	s.mux.HandleFunc("/v1/leader", s.handleLeader)
	s.mux.HandleFunc("/v1/metrics", s.handleMetrics)
	s.mux.HandleFunc("/v1/events", s.handleEvents)

	// Operational endpoints
	s.mux.HandleFunc("/health", metrics.HealthHandler())
	s.mux.HandleFunc("/ready", metrics.ReadyHandler())
	s.mux.HandleFunc("/live", metrics.LivenessHandler())
	s.mux.Handle("/metrics", metrics.Handler())
}

// Handler returns the full middleware-wrapped handler, also used by
// tests to exercise the server without a listener.
func (s *Server) Handler() http.Handler {
	return Chain(
		Recovery(s.logger),
		Logging(s.logger),
		Instrument(),
	)(s.mux)
}

// Start starts the HTTP server and blocks until it stops. Only a
// ReadHeaderTimeout is set: /v1/events holds its response open
// indefinitely, so a write timeout would sever every stream.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("API listening")
	metrics.UpdateComponent("api", true, "")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		metrics.UpdateComponent("api", false, err.Error())
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() {
	if s.http == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.http.Shutdown(ctx)
}

// errorResponse is the wire form of every API error. Code is a stable
// machine-readable identifier; Error is human-readable and may change.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusResponse acknowledges operations with no other payload.
type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeBadJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body", Code: "bad_json"})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "not_found"})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "method_not_allowed"})
}

// errorStatus maps taxonomy errors to an HTTP status and a stable code.
// ErrNoFeasibleNode is a 400, not a 409 or 422: the pod was admitted
// and persisted, the request itself asked for a placement the current
// cluster shape cannot satisfy.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrMissingField):
		return http.StatusBadRequest, "missing_field"
	case errors.Is(err, types.ErrNoFeasibleNode):
		return http.StatusBadRequest, "no_feasible_node"
	case errors.Is(err, types.ErrNodeNotFound):
		return http.StatusNotFound, "node_not_found"
	case errors.Is(err, types.ErrPodNotFound):
		return http.StatusNotFound, "pod_not_found"
	case errors.Is(err, types.ErrDuplicateNode):
		return http.StatusConflict, "duplicate_node"
	case errors.Is(err, types.ErrDuplicatePod):
		return http.StatusConflict, "duplicate_pod"
	case errors.Is(err, types.ErrInsufficientCapacity):
		return http.StatusUnprocessableEntity, "insufficient_capacity"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
