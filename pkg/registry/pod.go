package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/roost-io/roost/pkg/types"
)

// PodRegistry tracks pods and their assignments. Like NodeRegistry it
// relies on the manager's critical section for serialization.
type PodRegistry struct {
	store storage.Store
	clock clock.Clock
	nodes *NodeRegistry
}

// NewPodRegistry creates a pod registry over the given store. The node
// registry supplies the cluster-wide capacity view for admission.
func NewPodRegistry(store storage.Store, clk clock.Clock, nodes *NodeRegistry) *PodRegistry {
	return &PodRegistry{
		store: store,
		clock: clk,
		nodes: nodes,
	}
}

// Create admits and records a new pod in pending state. Admission
// checks aggregate capacity only: the live nodes together must have
// cpuRequest CPU free, even though no single node may fit it. The pod
// is persisted before any placement is attempted, so a pod that clears
// admission exists even if scheduling then finds no feasible node.
func (r *PodRegistry) Create(id string, cpuRequest int, window time.Duration) (*types.Pod, error) {
	if id == "" {
		return nil, fmt.Errorf("pod id: %w", types.ErrMissingField)
	}
	if cpuRequest <= 0 {
		return nil, fmt.Errorf("pod %s cpu request: %w", id, types.ErrMissingField)
	}

	_, err := r.store.GetPod(id)
	if err == nil {
		return nil, fmt.Errorf("pod %s: %w", id, types.ErrDuplicatePod)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pod %s: %w", id, err)
	}

	capacity, err := r.nodes.LiveCapacity(window)
	if err != nil {
		return nil, err
	}
	if cpuRequest > capacity {
		return nil, fmt.Errorf("pod %s needs %d cpu, cluster has %d: %w",
			id, cpuRequest, capacity, types.ErrInsufficientCapacity)
	}

	pod := &types.Pod{
		ID:         id,
		CPURequest: cpuRequest,
		Status:     types.PodStatusPending,
		CreatedAt:  r.clock.Now(),
	}

	if err := r.store.CreatePod(pod); err != nil {
		return nil, fmt.Errorf("failed to store pod %s: %w", id, err)
	}
	return pod, nil
}

// Assign binds a pod to a node and marks it running.
func (r *PodRegistry) Assign(podID, nodeID string) (*types.Pod, error) {
	pod, err := r.Get(podID)
	if err != nil {
		return nil, err
	}

	pod.NodeID = nodeID
	pod.Status = types.PodStatusRunning

	if err := r.store.UpdatePod(pod); err != nil {
		return nil, fmt.Errorf("failed to update pod %s: %w", podID, err)
	}
	return pod, nil
}

// Evict unbinds a pod from its node and returns it to pending.
func (r *PodRegistry) Evict(podID string) (*types.Pod, error) {
	pod, err := r.Get(podID)
	if err != nil {
		return nil, err
	}

	pod.NodeID = ""
	pod.Status = types.PodStatusPending

	if err := r.store.UpdatePod(pod); err != nil {
		return nil, fmt.Errorf("failed to update pod %s: %w", podID, err)
	}
	return pod, nil
}

// EvictByNode returns every pod assigned to nodeID to pending and
// reports the evicted pods so the caller can release their
// reservations.
func (r *PodRegistry) EvictByNode(nodeID string) ([]*types.Pod, error) {
	pods, err := r.ListByNode(nodeID)
	if err != nil {
		return nil, err
	}

	for _, pod := range pods {
		pod.NodeID = ""
		pod.Status = types.PodStatusPending
		if err := r.store.UpdatePod(pod); err != nil {
			return nil, fmt.Errorf("failed to update pod %s: %w", pod.ID, err)
		}
	}
	return pods, nil
}

// ListByNode returns the pods assigned to one node.
func (r *PodRegistry) ListByNode(nodeID string) ([]*types.Pod, error) {
	pods, err := r.store.ListPodsByNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pods for node %s: %w", nodeID, err)
	}
	return pods, nil
}

// ListPending returns pods awaiting placement, in ascending id order.
func (r *PodRegistry) ListPending() ([]*types.Pod, error) {
	pods, err := r.List()
	if err != nil {
		return nil, err
	}

	var pending []*types.Pod
	for _, pod := range pods {
		if pod.Status == types.PodStatusPending {
			pending = append(pending, pod)
		}
	}
	return pending, nil
}

// Get returns a pod by id.
func (r *PodRegistry) Get(id string) (*types.Pod, error) {
	pod, err := r.store.GetPod(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("pod %s: %w", id, types.ErrPodNotFound)
		}
		return nil, fmt.Errorf("failed to get pod %s: %w", id, err)
	}
	return pod, nil
}

// List returns all pods in ascending id order.
func (r *PodRegistry) List() ([]*types.Pod, error) {
	pods, err := r.store.ListPods()
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	return pods, nil
}
