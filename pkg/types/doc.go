/*
Package types defines the core data structures used throughout Roost.

This package contains the domain model shared by every other package:
nodes, pods, placement strategies, cluster settings, and the sentinel
errors cluster operations return.

# Core Types

Cluster membership:
  - Node: a schedulable member with a fixed CPU capacity, a running
    CPU balance, a health status, and a heartbeat timestamp
  - NodeStatus: healthy or unhealthy

Workloads:
  - Pod: a unit of work holding a CPU reservation, either pending
    (unassigned) or running on exactly one node
  - PodStatus: pending or running

Placement:
  - Strategy: first_fit, best_fit, worst_fit
  - Settings: the single cluster-wide record holding the active
    strategy and the current leader

# Invariants

Two bookkeeping rules hold after every state transition:

  - node.AvailableCPU == node.TotalCPU minus the CPU requests of the
    pods assigned to it
  - pod.Status == running exactly when pod.NodeID is non-empty, and
    the referenced node exists

The manager package is responsible for upholding both; types here are
plain data with no synchronization of their own. Mutations must be
serialized by the caller.

# Errors

Operations return sentinel errors (ErrDuplicateNode, ErrNodeNotFound,
ErrInsufficientCapacity, ...) that callers test with errors.Is. Wrapped
variants created with fmt.Errorf("...: %w", err) still match.

# Serialization

All types carry JSON tags and are stored as JSON by pkg/storage, which
keeps stored records human-readable and lets the API serve them without
a conversion layer.
*/
package types
