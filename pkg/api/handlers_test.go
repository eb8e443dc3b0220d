package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roost-io/roost/pkg/events"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/roost-io/roost/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *manager.Manager) {
	t.Helper()

	store := storage.NewMemoryStore()
	mgr, err := manager.NewManager(&manager.Config{
		DefaultNodeCPU: 8,
		LivenessWindow: 30 * time.Second,
	}, store, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mgr.Shutdown()
	})

	return NewServer(mgr), mgr
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	decodeJSON(t, rec, &resp)
	return resp
}

func TestAddNode(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})
	require.Equal(t, http.StatusCreated, rec.Code)

	var node types.Node
	decodeJSON(t, rec, &node)
	assert.Equal(t, "node-a", node.ID)
	assert.Equal(t, 4, node.TotalCPU)
	assert.Equal(t, 4, node.AvailableCPU)
	assert.Equal(t, types.NodeStatusHealthy, node.Status)
}

func TestAddNodeDefaultCPU(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var node types.Node
	decodeJSON(t, rec, &node)
	assert.Equal(t, 8, node.TotalCPU)
}

func TestAddNodeDuplicate(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})
	rec := doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_node", decodeError(t, rec).Code)
}

func TestAddNodeMissingID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{CPU: 4})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_field", decodeError(t, rec).Code)
}

func TestAddNodeBadJSON(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/nodes", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_json", decodeError(t, rec).Code)
}

func TestListNodes(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-b", CPU: 4})
	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 8})

	rec := doRequest(t, s, http.MethodGet, "/v1/nodes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var nodes []*types.Node
	decodeJSON(t, rec, &nodes)
	require.Len(t, nodes, 2)
	assert.Equal(t, "node-a", nodes[0].ID)
	assert.Equal(t, "node-b", nodes[1].ID)
}

func TestGetNode(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodGet, "/v1/nodes/node-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var node types.Node
	decodeJSON(t, rec, &node)
	assert.Equal(t, "node-a", node.ID)

	rec = doRequest(t, s, http.MethodGet, "/v1/nodes/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "node_not_found", decodeError(t, rec).Code)
}

func TestRemoveNode(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodDelete, "/v1/nodes/node-a", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/v1/nodes/node-a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScale(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes/scale", scaleRequest{Count: 3})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp scaleResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Nodes, 3)
	for _, node := range resp.Nodes {
		assert.Equal(t, 8, node.TotalCPU)
		assert.Contains(t, node.ID, "node-")
	}
}

func TestScaleZeroCount(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes/scale", scaleRequest{Count: 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_field", decodeError(t, rec).Code)
}

func TestNodeActions(t *testing.T) {
	s, mgr := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes/node-a/heartbeat", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/v1/nodes/node-a/fail", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	node, err := mgr.GetNode("node-a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeStatusUnhealthy, node.Status)

	rec = doRequest(t, s, http.MethodPost, "/v1/nodes/node-a/recover", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	node, err = mgr.GetNode("node-a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeStatusHealthy, node.Status)
}

func TestNodeActionUnknownNode(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes/ghost/fail", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "node_not_found", decodeError(t, rec).Code)
}

func TestNodeActionWrongMethod(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodGet, "/v1/nodes/node-a/heartbeat", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNodeUnknownAction(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodPost, "/v1/nodes/node-a/explode", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestLaunchPod(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1", CPU: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp launchPodResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "web-1", resp.PodID)
	assert.Equal(t, types.PodStatusRunning, resp.Status)
	assert.Equal(t, "node-a", resp.NodeID)
}

func TestLaunchPodDefaultCPU(t *testing.T) {
	s, mgr := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	pod, err := mgr.GetPod("web-1")
	require.NoError(t, err)
	assert.Equal(t, 1, pod.CPURequest)
}

func TestLaunchPodNoFeasibleNode(t *testing.T) {
	s, mgr := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 5})
	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-b", CPU: 5})

	// Admitted by aggregate capacity, fits on no single node.
	rec := doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "big-1", CPU: 8})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_feasible_node", decodeError(t, rec).Code)

	// The pod was persisted and is waiting for the rescheduler.
	pod, err := mgr.GetPod("big-1")
	require.NoError(t, err)
	assert.Equal(t, types.PodStatusPending, pod.Status)
}

func TestLaunchPodInsufficientCapacity(t *testing.T) {
	s, mgr := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec := doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "big-1", CPU: 100})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_capacity", decodeError(t, rec).Code)

	// Rejected pods are not persisted.
	_, err := mgr.GetPod("big-1")
	assert.ErrorIs(t, err, types.ErrPodNotFound)
}

func TestLaunchPodDuplicate(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})
	doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1", CPU: 2})

	rec := doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1", CPU: 2})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_pod", decodeError(t, rec).Code)
}

func TestListPods(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})
	doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1", CPU: 2})

	rec := doRequest(t, s, http.MethodGet, "/v1/pods", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pods []*types.Pod
	decodeJSON(t, rec, &pods)
	require.Len(t, pods, 1)
	assert.Equal(t, "web-1", pods[0].ID)
	assert.Equal(t, types.PodStatusRunning, pods[0].Status)
}

func TestGetPod(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})
	doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1", CPU: 2})

	rec := doRequest(t, s, http.MethodGet, "/v1/pods/web-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pod types.Pod
	decodeJSON(t, rec, &pod)
	assert.Equal(t, "node-a", pod.NodeID)

	rec = doRequest(t, s, http.MethodGet, "/v1/pods/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "pod_not_found", decodeError(t, rec).Code)
}

func TestStrategyRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/strategy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp strategyResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, types.StrategyBestFit, resp.Strategy)

	rec = doRequest(t, s, http.MethodPut, "/v1/strategy", strategyRequest{Strategy: "worst_fit"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &resp)
	assert.Equal(t, types.StrategyWorstFit, resp.Strategy)

	rec = doRequest(t, s, http.MethodGet, "/v1/strategy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &resp)
	assert.Equal(t, types.StrategyWorstFit, resp.Strategy)
}

func TestStrategyUnknownNormalizes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/v1/strategy", strategyRequest{Strategy: "spread"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp strategyResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, types.StrategyBestFit, resp.Strategy)
}

func TestLeader(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/leader", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp leaderResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, types.NoLeader, resp.Leader)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})

	rec = doRequest(t, s, http.MethodGet, "/v1/leader", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "node-a", resp.Leader)
}

func TestMetricsSnapshot(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/v1/nodes", addNodeRequest{ID: "node-a", CPU: 4})
	doRequest(t, s, http.MethodPost, "/v1/pods", launchPodRequest{ID: "web-1", CPU: 2})

	rec := doRequest(t, s, http.MethodGet, "/v1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot types.MetricsSnapshot
	decodeJSON(t, rec, &snapshot)
	assert.Equal(t, 1, snapshot.HealthyNodes)
	assert.Equal(t, 2, snapshot.AvailableCPU)
	assert.Equal(t, 1, snapshot.RunningPods)
}

func TestEventStream(t *testing.T) {
	s, mgr := newTestServer(t)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = mgr.AddNode("node-a", 4)
	require.NoError(t, err)

	scanner := bufio.NewScanner(resp.Body)
	require.True(t, scanner.Scan(), "expected an event line")

	var event events.Event
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
	assert.Equal(t, events.EventNodeJoined, event.Type)
	assert.Equal(t, "node-a", event.Metadata["node_id"])
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodGet, "/v1/nodes", nil)

	rec := doRequest(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "roost_api_requests_total")
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodDelete, "/v1/pods", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", decodeError(t, rec).Code)
}
