package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/roost-io/roost/pkg/types"
)

// NodeRegistry tracks cluster membership and per-node CPU bookkeeping.
// It performs no locking of its own; the manager serializes every call
// under its critical section.
type NodeRegistry struct {
	store storage.Store
	clock clock.Clock
}

// NewNodeRegistry creates a node registry over the given store.
func NewNodeRegistry(store storage.Store, clk clock.Clock) *NodeRegistry {
	return &NodeRegistry{
		store: store,
		clock: clk,
	}
}

// Register adds a new node with the given CPU capacity. The node
// starts healthy with a fresh heartbeat and all capacity available.
func (r *NodeRegistry) Register(id string, totalCPU int) (*types.Node, error) {
	if id == "" {
		return nil, fmt.Errorf("node id: %w", types.ErrMissingField)
	}
	if totalCPU <= 0 {
		return nil, fmt.Errorf("node %s total cpu: %w", id, types.ErrMissingField)
	}

	_, err := r.store.GetNode(id)
	if err == nil {
		return nil, fmt.Errorf("node %s: %w", id, types.ErrDuplicateNode)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check node %s: %w", id, err)
	}

	now := r.clock.Now()
	node := &types.Node{
		ID:            id,
		TotalCPU:      totalCPU,
		AvailableCPU:  totalCPU,
		Status:        types.NodeStatusHealthy,
		LastHeartbeat: now,
		CreatedAt:     now,
	}

	if err := r.store.CreateNode(node); err != nil {
		return nil, fmt.Errorf("failed to store node %s: %w", id, err)
	}
	return node, nil
}

// Remove deletes a node. Pods assigned to it are the caller's problem;
// the manager evicts them in the same critical section.
func (r *NodeRegistry) Remove(id string) error {
	if err := r.store.DeleteNode(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("node %s: %w", id, types.ErrNodeNotFound)
		}
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}
	return nil
}

// Heartbeat refreshes a node's liveness timestamp. A heartbeat from an
// unhealthy node brings it back to healthy.
func (r *NodeRegistry) Heartbeat(id string) (*types.Node, error) {
	node, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	node.LastHeartbeat = r.clock.Now()
	node.Status = types.NodeStatusHealthy

	if err := r.store.UpdateNode(node); err != nil {
		return nil, fmt.Errorf("failed to update node %s: %w", id, err)
	}
	return node, nil
}

// MarkUnhealthy records a node as failed. The heartbeat timestamp is
// left untouched so the failure time stays observable.
func (r *NodeRegistry) MarkUnhealthy(id string) (*types.Node, error) {
	node, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	node.Status = types.NodeStatusUnhealthy

	if err := r.store.UpdateNode(node); err != nil {
		return nil, fmt.Errorf("failed to update node %s: %w", id, err)
	}
	return node, nil
}

// MarkHealthy returns a node to service and refreshes its heartbeat,
// so the failure detector does not immediately fail it again.
func (r *NodeRegistry) MarkHealthy(id string) (*types.Node, error) {
	node, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	node.Status = types.NodeStatusHealthy
	node.LastHeartbeat = r.clock.Now()

	if err := r.store.UpdateNode(node); err != nil {
		return nil, fmt.Errorf("failed to update node %s: %w", id, err)
	}
	return node, nil
}

// Reserve deducts cpu from a node's available capacity.
func (r *NodeRegistry) Reserve(id string, cpu int) error {
	node, err := r.Get(id)
	if err != nil {
		return err
	}

	if cpu > node.AvailableCPU {
		return fmt.Errorf("node %s has %d cpu available, cannot reserve %d",
			id, node.AvailableCPU, cpu)
	}

	node.AvailableCPU -= cpu
	if err := r.store.UpdateNode(node); err != nil {
		return fmt.Errorf("failed to update node %s: %w", id, err)
	}
	return nil
}

// Release returns cpu to a node's available capacity.
func (r *NodeRegistry) Release(id string, cpu int) error {
	node, err := r.Get(id)
	if err != nil {
		return err
	}

	node.AvailableCPU += cpu
	if err := r.store.UpdateNode(node); err != nil {
		return fmt.Errorf("failed to update node %s: %w", id, err)
	}
	return nil
}

// Get returns a node by id.
func (r *NodeRegistry) Get(id string) (*types.Node, error) {
	node, err := r.store.GetNode(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("node %s: %w", id, types.ErrNodeNotFound)
		}
		return nil, fmt.Errorf("failed to get node %s: %w", id, err)
	}
	return node, nil
}

// List returns all nodes in ascending id order.
func (r *NodeRegistry) List() ([]*types.Node, error) {
	nodes, err := r.store.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}

// RefreshAll stamps every node's heartbeat with the current time
// without touching status. This is the simulator path: a synthetic
// heartbeat keeps admission alive but does not overrule a manual
// failure the way a real per-node Heartbeat would.
func (r *NodeRegistry) RefreshAll() (int, error) {
	nodes, err := r.List()
	if err != nil {
		return 0, err
	}

	now := r.clock.Now()
	refreshed := 0
	for _, node := range nodes {
		node.LastHeartbeat = now
		if err := r.store.UpdateNode(node); err != nil {
			return refreshed, fmt.Errorf("failed to update node %s: %w", node.ID, err)
		}
		refreshed++
	}
	return refreshed, nil
}

// LiveCapacity sums the available CPU of every node whose heartbeat is
// at most window old, regardless of recorded status. A node exactly at
// the boundary still counts. This is the admission view of capacity:
// heartbeat recency, not the detector's verdict, decides liveness
// here.
func (r *NodeRegistry) LiveCapacity(window time.Duration) (int, error) {
	nodes, err := r.List()
	if err != nil {
		return 0, err
	}

	now := r.clock.Now()
	total := 0
	for _, node := range nodes {
		if now.Sub(node.LastHeartbeat) <= window {
			total += node.AvailableCPU
		}
	}
	return total, nil
}
