/*
Package manager implements the Roost control plane core.

The Manager owns all cluster state (nodes, pods, settings) and is the
single entry point for mutating it. Every operation, whether it comes
from an API request or a background sweep, runs under one process-wide
mutex, so the store below the manager never sees interleaved writes.

# Architecture

	┌─────────────────── MANAGER ───────────────────┐
	│                                               │
	│   API handlers      background loops          │
	│        │                  │                   │
	│        ▼                  ▼                   │
	│  ┌─────────────────────────────────┐          │
	│  │      single critical section    │          │
	│  └───────────────┬─────────────────┘          │
	│                  │                            │
	│     ┌────────────┼────────────┐               │
	│     ▼            ▼            ▼               │
	│  NodeRegistry PodRegistry  Settings           │
	│     │            │            │               │
	│     └────────────┼────────────┘               │
	│                  ▼                            │
	│           storage.Store                       │
	│      (bolt / memory / redis)                  │
	└───────────────────────────────────────────────┘

The scheduler and leader elector are pure functions invoked under the
lock; they never touch the store themselves. The event broker receives
a notification for every state transition and fans it out to API
stream subscribers.

# Core Components

Manager:
  - Owns the mutex, the registries, the store, and the event broker
  - Exposes every cluster operation as a locked method
  - Normalizes config (default node CPU, liveness window) at creation

MetricsCollector:
  - Companion loop refreshing Prometheus cluster gauges every 15s
  - Reads through the manager's locked list methods

# Operations

Foreground (called by the API layer):

	AddNode(id, totalCPU)     register a node
	ScaleUp(count)            register count nodes with generated ids
	RemoveNode(id)            delete a node, evicting its pods
	LaunchPod(id, cpuRequest) admit, persist, and place a pod
	Heartbeat(id)             refresh liveness, resurrect if unhealthy
	FailNode(id)              manual failure: mark unhealthy + evict
	RecoverNode(id)           manual recovery: mark healthy + refresh
	ListNodes / ListPods      consistent snapshots
	Leader()                  sticky leader resolution
	SetStrategy / GetStrategy cluster-wide placement policy
	Metrics()                 healthy nodes, free CPU, running pods

Background sweeps (called by the loops in pkg/health, pkg/reconciler,
and pkg/heartbeat; each is one critical section):

	DetectFailures()     fail nodes silent past the liveness window
	ReschedulePending()  retry placement of every pending pod
	RefreshHeartbeats()  stamp all heartbeats (simulator deployments)

# Placement

LaunchPod runs three steps that succeed or fail together under the
lock:

 1. Admission: the live nodes (heartbeat within the window, status
    ignored) must together have cpuRequest CPU free, or the pod is
    rejected with ErrInsufficientCapacity and nothing is stored.
 2. Persist: the pod is written in pending state. From here on it
    exists regardless of placement outcome.
 3. Place: the scheduler selects among healthy nodes under the
    cluster strategy. On success the node's CPU is reserved and the
    pod assigned in the same critical section. On ErrNoFeasibleNode
    the pod stays pending and the rescheduler retries it each cycle.

Admission and placement disagree about liveness: admission trusts
heartbeat recency, placement trusts recorded status. A node that
was manually failed but still heartbeats counts toward cluster capacity
yet receives no pods.

# Failure Handling

FailNode and the detector sweep share one transition: mark the node
unhealthy, return each of its pods to pending, and release their CPU
reservations, all atomically. After the transition the node's available
CPU again equals its total, and the evicted pods are eligible for the
next rescheduler cycle.

RemoveNode performs the same eviction without the release (the node
record is deleted outright), keeping the invariant that no pod ever
references a node that does not exist.

# Usage

	store, _ := storage.NewBoltStore(cfg.DataDir)
	mgr, err := manager.NewManager(&manager.Config{
		DefaultNodeCPU: cfg.DefaultNodeCPU,
		LivenessWindow: cfg.LivenessWindow,
		ResetOnBoot:    cfg.ResetOnBoot,
	}, store, clock.New())
	if err != nil {
		log.Fatal(err)
	}
	defer mgr.Shutdown()

	nodeID, err := mgr.LaunchPod("web-1", 3)
	switch {
	case errors.Is(err, types.ErrNoFeasibleNode):
		// Admitted but pending; the rescheduler owns it now.
	case err != nil:
		// Rejected: duplicate, invalid, or insufficient capacity.
	default:
		fmt.Println("placed on", nodeID)
	}

# Concurrency

One sync.Mutex serializes everything. Exported methods lock; helpers
with the Locked suffix assume the lock is held and must never be called
from outside the package. Background loops call only exported methods,
so there is no reentrancy. Reads (ListNodes, Metrics) take the same
lock to avoid torn snapshots.

This trades throughput for simplicity at single-process scale. A stuck
store call blocks the whole control plane; nothing times out the
critical section.

# Integration Points

  - pkg/registry: node and pod CRUD under the manager's lock
  - pkg/scheduler: pure node selection during placement
  - pkg/leader: pure sticky election during Leader()
  - pkg/storage: persistence behind the registries
  - pkg/events: transition notifications for API streaming
  - pkg/metrics: counters on transitions, gauges via the collector
  - pkg/api: HTTP surface calling the operations above
  - pkg/health, pkg/reconciler, pkg/heartbeat: background sweeps

# See Also

  - pkg/scheduler for strategy semantics
  - pkg/storage for backend selection
  - cmd/roost for process wiring
*/
package manager
