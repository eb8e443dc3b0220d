package types

import (
	"strings"
	"time"
)

// Node represents a schedulable member of the cluster
type Node struct {
	ID            string     `json:"id"`
	TotalCPU      int        `json:"total_cpu"`     // Capacity, fixed at registration
	AvailableCPU  int        `json:"available_cpu"` // TotalCPU minus reservations of assigned pods
	Status        NodeStatus `json:"status"`
	LastHeartbeat time.Time  `json:"last_heartbeat"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NodeStatus represents the current state of a node
type NodeStatus string

const (
	NodeStatusHealthy   NodeStatus = "healthy"
	NodeStatusUnhealthy NodeStatus = "unhealthy"
)

// Pod represents a unit of work holding a CPU reservation
type Pod struct {
	ID         string    `json:"id"`
	CPURequest int       `json:"cpu_request"`
	Status     PodStatus `json:"status"`
	NodeID     string    `json:"node_id,omitempty"` // Empty while pending
	CreatedAt  time.Time `json:"created_at"`
}

// PodStatus represents the current state of a pod
type PodStatus string

const (
	PodStatusPending PodStatus = "pending"
	PodStatusRunning PodStatus = "running"
)

// Strategy selects the placement algorithm used by the scheduler
type Strategy string

const (
	StrategyFirstFit Strategy = "first_fit" // First node with room
	StrategyBestFit  Strategy = "best_fit"  // Tightest fit, least leftover
	StrategyWorstFit Strategy = "worst_fit" // Loosest fit, most leftover
)

// DefaultStrategy is used when no strategy has been configured.
const DefaultStrategy = StrategyBestFit

// ParseStrategy normalizes user input to a known strategy.
// Unrecognized values fall back to the default rather than erroring,
// so a typo in a manifest degrades to best-fit instead of breaking
// placement.
func ParseStrategy(s string) Strategy {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyFirstFit:
		return StrategyFirstFit
	case StrategyBestFit:
		return StrategyBestFit
	case StrategyWorstFit:
		return StrategyWorstFit
	default:
		return DefaultStrategy
	}
}

// NoLeader is the sentinel surfaced when no healthy node can lead.
const NoLeader = "none"

// Settings holds cluster-wide state that is not a node or a pod.
// There is exactly one Settings record per cluster.
type Settings struct {
	Strategy Strategy `json:"strategy"`
	Leader   string   `json:"leader,omitempty"` // Empty when no leader is held
}

// MetricsSnapshot is a point-in-time summary of cluster capacity,
// computed atomically so the three figures are mutually consistent.
type MetricsSnapshot struct {
	HealthyNodes int `json:"healthy_nodes"`
	AvailableCPU int `json:"available_cpu"` // Sum over healthy nodes only
	RunningPods  int `json:"running_pods"`
}
