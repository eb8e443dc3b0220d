package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roost-io/roost/pkg/api"
	"github.com/roost-io/roost/pkg/events"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/roost-io/roost/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *manager.Manager) {
	t.Helper()

	store := storage.NewMemoryStore()
	mgr, err := manager.NewManager(&manager.Config{
		DefaultNodeCPU: 8,
		LivenessWindow: 30 * time.Second,
	}, store, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(mgr).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Shutdown()
	})

	c := NewClient(srv.URL)
	t.Cleanup(func() { _ = c.Close() })
	return c, mgr
}

func TestNodeLifecycle(t *testing.T) {
	c, _ := newTestClient(t)

	node, err := c.AddNode("node-a", 4)
	require.NoError(t, err)
	assert.Equal(t, "node-a", node.ID)
	assert.Equal(t, 4, node.TotalCPU)

	nodes, err := c.ListNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	require.NoError(t, c.Heartbeat("node-a"))
	require.NoError(t, c.FailNode("node-a"))

	got, err := c.GetNode("node-a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeStatusUnhealthy, got.Status)

	require.NoError(t, c.RecoverNode("node-a"))
	require.NoError(t, c.RemoveNode("node-a"))

	nodes, err = c.ListNodes()
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestErrorsSurviveTheWire(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetNode("ghost")
	assert.ErrorIs(t, err, types.ErrNodeNotFound)

	_, err = c.AddNode("node-a", 4)
	require.NoError(t, err)
	_, err = c.AddNode("node-a", 4)
	assert.ErrorIs(t, err, types.ErrDuplicateNode)

	_, err = c.AddNode("", 4)
	assert.ErrorIs(t, err, types.ErrMissingField)
}

func TestLaunchPod(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.AddNode("node-a", 10)
	require.NoError(t, err)
	_, err = c.AddNode("node-b", 4)
	require.NoError(t, err)

	// Default strategy is best fit, so the tighter node wins.
	result, err := c.LaunchPod("web-1", 3)
	require.NoError(t, err)
	assert.Equal(t, "node-b", result.NodeID)
	assert.Equal(t, types.PodStatusRunning, result.Status)

	pod, err := c.GetPod("web-1")
	require.NoError(t, err)
	assert.Equal(t, "node-b", pod.NodeID)
}

func TestLaunchPodNoFeasibleNode(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.AddNode("node-a", 5)
	require.NoError(t, err)
	_, err = c.AddNode("node-b", 5)
	require.NoError(t, err)

	_, err = c.LaunchPod("big-1", 8)
	assert.ErrorIs(t, err, types.ErrNoFeasibleNode)

	// Pending, not lost.
	pod, err := c.GetPod("big-1")
	require.NoError(t, err)
	assert.Equal(t, types.PodStatusPending, pod.Status)
}

func TestScaleAndMetrics(t *testing.T) {
	c, _ := newTestClient(t)

	nodes, err := c.Scale(3)
	require.NoError(t, err)
	assert.Len(t, nodes, 3)

	snapshot, err := c.Metrics()
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.HealthyNodes)
	assert.Equal(t, 24, snapshot.AvailableCPU)
	assert.Equal(t, 0, snapshot.RunningPods)
}

func TestStrategyAndLeader(t *testing.T) {
	c, _ := newTestClient(t)

	strategy, err := c.GetStrategy()
	require.NoError(t, err)
	assert.Equal(t, types.StrategyBestFit, strategy)

	strategy, err = c.SetStrategy("first_fit")
	require.NoError(t, err)
	assert.Equal(t, types.StrategyFirstFit, strategy)

	leader, err := c.Leader()
	require.NoError(t, err)
	assert.Equal(t, types.NoLeader, leader)

	_, err = c.AddNode("node-a", 4)
	require.NoError(t, err)

	leader, err = c.Leader()
	require.NoError(t, err)
	assert.Equal(t, "node-a", leader)
}

func TestStreamEvents(t *testing.T) {
	c, mgr := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.StreamEvents(ctx)
	require.NoError(t, err)

	_, err = mgr.AddNode("node-a", 4)
	require.NoError(t, err)

	select {
	case event := <-ch:
		require.NotNil(t, event)
		assert.Equal(t, events.EventNodeJoined, event.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
