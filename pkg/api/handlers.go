package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/roost-io/roost/pkg/types"
)

// defaultPodCPU is used when a launch request omits the cpu field.
const defaultPodCPU = 1

type addNodeRequest struct {
	ID  string `json:"id"`
	CPU int    `json:"cpu"`
}

type scaleRequest struct {
	Count int `json:"count"`
}

type launchPodRequest struct {
	ID  string `json:"id"`
	CPU int    `json:"cpu"`
}

type launchPodResponse struct {
	PodID  string          `json:"pod_id"`
	Status types.PodStatus `json:"status"`
	NodeID string          `json:"node_id,omitempty"`
}

type scaleResponse struct {
	Nodes []*types.Node `json:"nodes"`
}

type leaderResponse struct {
	Leader string `json:"leader"`
}

type strategyRequest struct {
	Strategy string `json:"strategy"`
}

type strategyResponse struct {
	Strategy types.Strategy `json:"strategy"`
}

// handleNodes serves the node collection: GET lists, POST registers.
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		nodes, err := s.manager.ListNodes()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nodes)

	case http.MethodPost:
		var req addNodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		if req.CPU == 0 {
			req.CPU = s.manager.DefaultNodeCPU()
		}

		node, err := s.manager.AddNode(req.ID, req.CPU)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, node)

	default:
		writeMethodNotAllowed(w)
	}
}

// handleScale serves POST /v1/nodes/scale.
func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req scaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	nodes, err := s.manager.ScaleUp(req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scaleResponse{Nodes: nodes})
}

// handleNode serves /v1/nodes/{id} and its heartbeat, fail, and
// recover subroutes.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/nodes/")
	parts := strings.SplitN(rest, "/", 2)

	id := parts[0]
	if id == "" {
		writeError(w, fmt.Errorf("node id: %w", types.ErrMissingField))
		return
	}

	var action string
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			node, err := s.manager.GetNode(id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, node)
		case http.MethodDelete:
			if err := s.manager.RemoveNode(id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeMethodNotAllowed(w)
		}

	case "heartbeat":
		s.nodeAction(w, r, id, s.manager.Heartbeat)
	case "fail":
		s.nodeAction(w, r, id, s.manager.FailNode)
	case "recover":
		s.nodeAction(w, r, id, s.manager.RecoverNode)
	default:
		writeNotFound(w)
	}
}

// nodeAction runs a POST-only state transition against one node.
func (s *Server) nodeAction(w http.ResponseWriter, r *http.Request, id string, fn func(string) error) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if err := fn(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handlePods serves the pod collection: GET lists, POST launches.
func (s *Server) handlePods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pods, err := s.manager.ListPods()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pods)

	case http.MethodPost:
		var req launchPodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		if req.CPU == 0 {
			req.CPU = defaultPodCPU
		}

		nodeID, err := s.manager.LaunchPod(req.ID, req.CPU)
		if err != nil {
			// The pod may have been admitted and left pending; the
			// error code tells the client which case it hit.
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, launchPodResponse{
			PodID:  req.ID,
			Status: types.PodStatusRunning,
			NodeID: nodeID,
		})

	default:
		writeMethodNotAllowed(w)
	}
}

// handlePod serves GET /v1/pods/{id}.
func (s *Server) handlePod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/pods/")
	if id == "" || strings.Contains(id, "/") {
		writeNotFound(w)
		return
	}

	pod, err := s.manager.GetPod(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pod)
}

// handleStrategy serves GET and PUT /v1/strategy.
func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		strategy, err := s.manager.GetStrategy()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, strategyResponse{Strategy: strategy})

	case http.MethodPut:
		var req strategyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}

		strategy, err := s.manager.SetStrategy(req.Strategy)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, strategyResponse{Strategy: strategy})

	default:
		writeMethodNotAllowed(w)
	}
}

// handleLeader serves GET /v1/leader.
func (s *Server) handleLeader(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	leader, err := s.manager.Leader()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderResponse{Leader: leader})
}

// handleMetrics serves GET /v1/metrics, the JSON capacity snapshot.
// The Prometheus exposition lives at /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	snapshot, err := s.manager.Metrics()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleEvents streams cluster events as newline-delimited JSON until
// the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported", Code: "internal_error"})
		return
	}

	broker := s.manager.EventBroker()
	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case event, ok := <-sub:
			if !ok {
				return
			}
			if err := enc.Encode(event); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
