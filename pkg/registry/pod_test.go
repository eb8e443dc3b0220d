package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/roost-io/roost/pkg/types"
)

const testWindow = 30 * time.Second

func newTestRegistries(t *testing.T) (*NodeRegistry, *PodRegistry, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := storage.NewMemoryStore()
	nodes := NewNodeRegistry(store, fake)
	pods := NewPodRegistry(store, fake, nodes)
	return nodes, pods, fake
}

func TestCreatePod(t *testing.T) {
	nodes, pods, fake := newTestRegistries(t)

	_, err := nodes.Register("node-a", 10)
	require.NoError(t, err)

	pod, err := pods.Create("web-1", 3, testWindow)
	require.NoError(t, err)
	assert.Equal(t, "web-1", pod.ID)
	assert.Equal(t, 3, pod.CPURequest)
	assert.Equal(t, types.PodStatusPending, pod.Status)
	assert.Empty(t, pod.NodeID)
	assert.Equal(t, fake.Now(), pod.CreatedAt)
}

func TestCreatePodDuplicate(t *testing.T) {
	nodes, pods, _ := newTestRegistries(t)

	_, err := nodes.Register("node-a", 10)
	require.NoError(t, err)

	_, err = pods.Create("web-1", 3, testWindow)
	require.NoError(t, err)

	_, err = pods.Create("web-1", 1, testWindow)
	assert.ErrorIs(t, err, types.ErrDuplicatePod)
}

func TestCreatePodValidation(t *testing.T) {
	_, pods, _ := newTestRegistries(t)

	_, err := pods.Create("", 3, testWindow)
	assert.ErrorIs(t, err, types.ErrMissingField)

	_, err = pods.Create("web-1", 0, testWindow)
	assert.ErrorIs(t, err, types.ErrMissingField)
}

func TestAdmissionRejectsOversizedPod(t *testing.T) {
	nodes, pods, _ := newTestRegistries(t)

	// Two 5-CPU nodes: 10 CPU in aggregate.
	_, err := nodes.Register("node-a", 5)
	require.NoError(t, err)
	_, err = nodes.Register("node-b", 5)
	require.NoError(t, err)

	// 11 exceeds the aggregate and is refused outright.
	_, err = pods.Create("big", 11, testWindow)
	assert.ErrorIs(t, err, types.ErrInsufficientCapacity)

	// Nothing was stored.
	_, err = pods.Get("big")
	assert.ErrorIs(t, err, types.ErrPodNotFound)

	// 10 matches the aggregate exactly and is admitted, even though no
	// single node can hold it.
	pod, err := pods.Create("wide", 10, testWindow)
	require.NoError(t, err)
	assert.Equal(t, types.PodStatusPending, pod.Status)
}

func TestAdmissionSkipsStaleNodes(t *testing.T) {
	nodes, pods, fake := newTestRegistries(t)

	_, err := nodes.Register("node-a", 10)
	require.NoError(t, err)

	fake.Advance(testWindow + time.Second)

	_, err = pods.Create("web-1", 1, testWindow)
	assert.ErrorIs(t, err, types.ErrInsufficientCapacity)

	// A heartbeat brings the capacity back.
	_, err = nodes.Heartbeat("node-a")
	require.NoError(t, err)

	_, err = pods.Create("web-1", 1, testWindow)
	assert.NoError(t, err)
}

func TestAssignAndEvict(t *testing.T) {
	nodes, pods, _ := newTestRegistries(t)

	_, err := nodes.Register("node-a", 10)
	require.NoError(t, err)
	_, err = pods.Create("web-1", 3, testWindow)
	require.NoError(t, err)

	pod, err := pods.Assign("web-1", "node-a")
	require.NoError(t, err)
	assert.Equal(t, types.PodStatusRunning, pod.Status)
	assert.Equal(t, "node-a", pod.NodeID)

	pod, err = pods.Evict("web-1")
	require.NoError(t, err)
	assert.Equal(t, types.PodStatusPending, pod.Status)
	assert.Empty(t, pod.NodeID)
}

func TestEvictByNode(t *testing.T) {
	nodes, pods, _ := newTestRegistries(t)

	_, err := nodes.Register("node-a", 10)
	require.NoError(t, err)

	for _, id := range []string{"web-1", "web-2", "web-3"} {
		_, err := pods.Create(id, 2, testWindow)
		require.NoError(t, err)
	}
	_, err = pods.Assign("web-1", "node-a")
	require.NoError(t, err)
	_, err = pods.Assign("web-3", "node-a")
	require.NoError(t, err)

	evicted, err := pods.EvictByNode("node-a")
	require.NoError(t, err)
	require.Len(t, evicted, 2)
	assert.Equal(t, "web-1", evicted[0].ID)
	assert.Equal(t, "web-3", evicted[1].ID)

	for _, id := range []string{"web-1", "web-3"} {
		pod, err := pods.Get(id)
		require.NoError(t, err)
		assert.Equal(t, types.PodStatusPending, pod.Status)
		assert.Empty(t, pod.NodeID)
	}
}

func TestAssignUnknownPod(t *testing.T) {
	_, pods, _ := newTestRegistries(t)

	_, err := pods.Assign("ghost", "node-a")
	assert.ErrorIs(t, err, types.ErrPodNotFound)
}

func TestListPendingAndByNode(t *testing.T) {
	nodes, pods, _ := newTestRegistries(t)

	_, err := nodes.Register("node-a", 10)
	require.NoError(t, err)

	for _, id := range []string{"web-1", "web-2", "web-3"} {
		_, err := pods.Create(id, 1, testWindow)
		require.NoError(t, err)
	}

	_, err = pods.Assign("web-2", "node-a")
	require.NoError(t, err)

	pending, err := pods.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "web-1", pending[0].ID)
	assert.Equal(t, "web-3", pending[1].ID)

	onNode, err := pods.ListByNode("node-a")
	require.NoError(t, err)
	require.Len(t, onNode, 1)
	assert.Equal(t, "web-2", onNode[0].ID)
}
