// Package leader implements deterministic leader selection over the
// node snapshot. This is bookkeeping, not consensus: there are no
// terms, no votes, and no quorum. Every observer of the same store
// state derives the same leader.
package leader

import (
	"github.com/roost-io/roost/pkg/types"
)

// Elect returns the node id that should hold leadership given the
// current snapshot and the previously recorded leader. The recorded
// leader is sticky: it keeps the role while it exists and is healthy,
// even if a smaller id has since joined or recovered. Otherwise the
// lexicographically smallest healthy id takes over. Returns "" when
// no node is healthy.
func Elect(nodes []*types.Node, current string) string {
	if current != "" && isHealthy(nodes, current) {
		return current
	}

	smallest := ""
	for _, node := range nodes {
		if node.Status != types.NodeStatusHealthy {
			continue
		}
		if smallest == "" || node.ID < smallest {
			smallest = node.ID
		}
	}
	return smallest
}

func isHealthy(nodes []*types.Node, id string) bool {
	for _, node := range nodes {
		if node.ID == id {
			return node.Status == types.NodeStatusHealthy
		}
	}
	return false
}
