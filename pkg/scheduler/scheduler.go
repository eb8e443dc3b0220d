package scheduler

import (
	"github.com/roost-io/roost/pkg/types"
)

// SelectNode picks a node for a CPU request from a cluster snapshot
// using the given placement strategy. Only healthy nodes are
// candidates. Returns nil when no healthy node has enough room.
//
// Selection is a pure function of the snapshot: no store access, no
// clock, no mutation. The manager deducts capacity and binds the pod
// under its critical section after selection, so select and commit
// stay one atomic step from the caller's point of view.
func SelectNode(nodes []*types.Node, cpuRequest int, strategy types.Strategy) *types.Node {
	candidates := filterHealthy(nodes)
	if len(candidates) == 0 {
		return nil
	}

	switch strategy {
	case types.StrategyFirstFit:
		return firstFit(candidates, cpuRequest)
	case types.StrategyWorstFit:
		return worstFit(candidates, cpuRequest)
	default:
		return bestFit(candidates, cpuRequest)
	}
}

// firstFit returns the first node in snapshot order with enough room.
func firstFit(nodes []*types.Node, cpuRequest int) *types.Node {
	for _, node := range nodes {
		if node.AvailableCPU >= cpuRequest {
			return node
		}
	}
	return nil
}

// bestFit returns the fitting node with the least available CPU,
// packing pods tightly. Strict less-than keeps the first of any tied
// nodes in snapshot order.
func bestFit(nodes []*types.Node, cpuRequest int) *types.Node {
	var selected *types.Node
	minAvailable := int(^uint(0) >> 1) // Max int

	for _, node := range nodes {
		if node.AvailableCPU >= cpuRequest && node.AvailableCPU < minAvailable {
			minAvailable = node.AvailableCPU
			selected = node
		}
	}
	return selected
}

// worstFit returns the fitting node with the most CPU left over after
// placement, spreading pods out. The running maximum starts at -1 so
// a zero-leftover exact fit is still accepted; strict greater-than
// keeps the first of any tied nodes in snapshot order.
func worstFit(nodes []*types.Node, cpuRequest int) *types.Node {
	var selected *types.Node
	maxLeftover := -1

	for _, node := range nodes {
		leftover := node.AvailableCPU - cpuRequest
		if leftover >= 0 && leftover > maxLeftover {
			maxLeftover = leftover
			selected = node
		}
	}
	return selected
}

// filterHealthy returns only nodes marked healthy. The recorded status
// is what counts here; a node with a fresh heartbeat but an unhealthy
// status is not a candidate until something marks it healthy again.
func filterHealthy(nodes []*types.Node) []*types.Node {
	var healthy []*types.Node
	for _, node := range nodes {
		if node.Status == types.NodeStatusHealthy {
			healthy = append(healthy, node)
		}
	}
	return healthy
}
