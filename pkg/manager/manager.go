package manager

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/events"
	"github.com/roost-io/roost/pkg/leader"
	"github.com/roost-io/roost/pkg/log"
	"github.com/roost-io/roost/pkg/metrics"
	"github.com/roost-io/roost/pkg/registry"
	"github.com/roost-io/roost/pkg/scheduler"
	"github.com/roost-io/roost/pkg/storage"
	"github.com/roost-io/roost/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultNodeCPU is the capacity given to nodes created by ScaleUp
	// when the deployment does not configure one.
	DefaultNodeCPU = 8

	// DefaultLivenessWindow is the maximum heartbeat age before a node
	// is considered stale by admission and the failure detector.
	DefaultLivenessWindow = 30 * time.Second
)

// Manager owns the cluster state. Every operation, foreground or
// background, runs under its single critical section; the registries
// and store below it do no locking of their own.
type Manager struct {
	mu sync.Mutex

	cfg    *Config
	store  storage.Store
	nodes  *registry.NodeRegistry
	pods   *registry.PodRegistry
	clock  clock.Clock
	broker *events.Broker
	logger zerolog.Logger
}

// Config holds configuration for creating a Manager
type Config struct {
	DefaultNodeCPU int           // Capacity of nodes created by ScaleUp
	LivenessWindow time.Duration // Max heartbeat age before a node counts as stale
	ResetOnBoot    bool          // Drop and recreate all state on startup
}

// NewManager creates a Manager over the given store. The settings
// record is seeded with the default strategy on first boot.
func NewManager(cfg *Config, store storage.Store, clk clock.Clock) (*Manager, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.DefaultNodeCPU <= 0 {
		cfg.DefaultNodeCPU = DefaultNodeCPU
	}
	if cfg.LivenessWindow <= 0 {
		cfg.LivenessWindow = DefaultLivenessWindow
	}
	if clk == nil {
		clk = clock.New()
	}

	if cfg.ResetOnBoot {
		if err := store.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset store: %w", err)
		}
	}

	nodes := registry.NewNodeRegistry(store, clk)
	pods := registry.NewPodRegistry(store, clk, nodes)

	broker := events.NewBroker()
	broker.Start()

	m := &Manager{
		cfg:    cfg,
		store:  store,
		nodes:  nodes,
		pods:   pods,
		clock:  clk,
		broker: broker,
		logger: log.WithComponent("manager"),
	}

	if err := m.seedSettings(); err != nil {
		broker.Stop()
		return nil, err
	}

	metrics.RegisterComponent("manager", true, "")
	return m, nil
}

func (m *Manager) seedSettings() error {
	_, err := m.store.GetSettings()
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	return m.store.PutSettings(&types.Settings{Strategy: types.DefaultStrategy})
}

// AddNode registers a node with the given CPU capacity.
func (m *Manager) AddNode(id string, totalCPU int) (*types.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, err := m.nodes.Register(id, totalCPU)
	if err != nil {
		return nil, err
	}

	m.logger.Info().Str("node_id", node.ID).Int("total_cpu", node.TotalCPU).Msg("Node joined cluster")
	m.publish(events.EventNodeJoined,
		fmt.Sprintf("Node %s joined with %d cpu", node.ID, node.TotalCPU),
		map[string]string{"node_id": node.ID})
	return node, nil
}

// ScaleUp creates count nodes with generated ids and the configured
// default capacity.
func (m *Manager) ScaleUp(count int) ([]*types.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count <= 0 {
		return nil, fmt.Errorf("scale count must be positive: %w", types.ErrMissingField)
	}

	created := make([]*types.Node, 0, count)
	for i := 0; i < count; i++ {
		id := "node-" + uuid.New().String()[:8]
		node, err := m.nodes.Register(id, m.cfg.DefaultNodeCPU)
		if err != nil {
			return created, err
		}
		m.publish(events.EventNodeJoined,
			fmt.Sprintf("Node %s joined with %d cpu", node.ID, node.TotalCPU),
			map[string]string{"node_id": node.ID})
		created = append(created, node)
	}

	m.logger.Info().Int("count", len(created)).Int("cpu_each", m.cfg.DefaultNodeCPU).Msg("Scaled up cluster")
	return created, nil
}

// RemoveNode deletes a node. Pods still assigned to it are evicted in
// the same critical section, so no pod ever references a vanished
// node.
func (m *Manager) RemoveNode(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.nodes.Get(id); err != nil {
		return err
	}

	evicted, err := m.pods.EvictByNode(id)
	if err != nil {
		return err
	}
	for _, pod := range evicted {
		metrics.PodsEvicted.Inc()
		m.publish(events.EventPodEvicted,
			fmt.Sprintf("Pod %s evicted from node %s", pod.ID, id),
			map[string]string{"pod_id": pod.ID, "node_id": id})
	}

	if err := m.nodes.Remove(id); err != nil {
		return err
	}

	m.logger.Info().Str("node_id", id).Int("evicted_pods", len(evicted)).Msg("Node removed from cluster")
	m.publish(events.EventNodeRemoved,
		fmt.Sprintf("Node %s removed", id),
		map[string]string{"node_id": id})
	return nil
}

// LaunchPod admits a pod, stores it pending, and attempts placement
// under the cluster strategy. On success the assigned node id is
// returned. ErrNoFeasibleNode means the pod was admitted and persisted
// but fits on no single node right now; it stays pending and the
// rescheduler retries it.
func (m *Manager) LaunchPod(id string, cpuRequest int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	timer := metrics.NewTimer()

	pod, err := m.pods.Create(id, cpuRequest, m.cfg.LivenessWindow)
	if err != nil {
		return "", err
	}
	m.publish(events.EventPodCreated,
		fmt.Sprintf("Pod %s created requesting %d cpu", pod.ID, pod.CPURequest),
		map[string]string{"pod_id": pod.ID})

	nodeID, err := m.placeLocked(pod)
	if err != nil {
		if errors.Is(err, types.ErrNoFeasibleNode) {
			m.logger.Warn().Str("pod_id", pod.ID).Int("cpu_request", pod.CPURequest).
				Msg("No feasible node, pod left pending")
		}
		return "", err
	}

	timer.ObserveDuration(metrics.PlacementLatency)
	return nodeID, nil
}

// placeLocked runs select + reserve + assign as one atomic unit.
// Lock must be held.
func (m *Manager) placeLocked(pod *types.Pod) (string, error) {
	nodes, err := m.nodes.List()
	if err != nil {
		return "", err
	}

	strategy, err := m.strategyLocked()
	if err != nil {
		return "", err
	}

	node := scheduler.SelectNode(nodes, pod.CPURequest, strategy)
	if node == nil {
		return "", fmt.Errorf("pod %s needs %d cpu on one node: %w",
			pod.ID, pod.CPURequest, types.ErrNoFeasibleNode)
	}

	if err := m.nodes.Reserve(node.ID, pod.CPURequest); err != nil {
		return "", err
	}
	if _, err := m.pods.Assign(pod.ID, node.ID); err != nil {
		return "", err
	}

	metrics.PodsScheduled.Inc()
	m.logger.Info().Str("pod_id", pod.ID).Str("node_id", node.ID).
		Str("strategy", string(strategy)).Msg("Pod scheduled")
	m.publish(events.EventPodScheduled,
		fmt.Sprintf("Pod %s scheduled on node %s", pod.ID, node.ID),
		map[string]string{"pod_id": pod.ID, "node_id": node.ID})
	return node.ID, nil
}

// Heartbeat refreshes a node's liveness timestamp. A heartbeat from an
// unhealthy node brings it back into service.
func (m *Manager) Heartbeat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, err := m.nodes.Get(id)
	if err != nil {
		return err
	}

	if _, err := m.nodes.Heartbeat(id); err != nil {
		return err
	}

	if prev.Status == types.NodeStatusUnhealthy {
		m.logger.Info().Str("node_id", id).Msg("Node recovered via heartbeat")
		m.publish(events.EventNodeRecovered,
			fmt.Sprintf("Node %s recovered", id),
			map[string]string{"node_id": id})
	}
	return nil
}

// FailNode manually marks a node unhealthy and evicts its pods.
func (m *Manager) FailNode(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLocked(id); err != nil {
		return err
	}
	m.logger.Warn().Str("node_id", id).Msg("Node manually marked as failed")
	return nil
}

// failLocked marks a node unhealthy and evicts its pods, releasing
// their reservations so available CPU again equals total minus the
// assigned sum. Lock must be held.
func (m *Manager) failLocked(id string) error {
	if _, err := m.nodes.MarkUnhealthy(id); err != nil {
		return err
	}

	evicted, err := m.pods.EvictByNode(id)
	if err != nil {
		return err
	}
	for _, pod := range evicted {
		if err := m.nodes.Release(id, pod.CPURequest); err != nil {
			return err
		}
		metrics.PodsEvicted.Inc()
		m.publish(events.EventPodEvicted,
			fmt.Sprintf("Pod %s evicted from node %s", pod.ID, id),
			map[string]string{"pod_id": pod.ID, "node_id": id})
	}

	m.publish(events.EventNodeDown,
		fmt.Sprintf("Node %s marked unhealthy", id),
		map[string]string{"node_id": id})
	return nil
}

// RecoverNode manually returns a node to service and refreshes its
// heartbeat so the detector does not immediately fail it again.
func (m *Manager) RecoverNode(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.nodes.MarkHealthy(id); err != nil {
		return err
	}

	m.logger.Info().Str("node_id", id).Msg("Node manually recovered")
	m.publish(events.EventNodeRecovered,
		fmt.Sprintf("Node %s recovered", id),
		map[string]string{"node_id": id})
	return nil
}

// GetNode returns one node by id.
func (m *Manager) GetNode(id string) (*types.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes.Get(id)
}

// ListNodes returns a snapshot of all nodes in ascending id order.
func (m *Manager) ListNodes() ([]*types.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes.List()
}

// GetPod returns one pod by id.
func (m *Manager) GetPod(id string) (*types.Pod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pods.Get(id)
}

// ListPods returns a snapshot of all pods in ascending id order.
func (m *Manager) ListPods() ([]*types.Pod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pods.List()
}

// Leader resolves the current leader: the recorded one while it stays
// healthy, else the smallest healthy node id, else the sentinel none.
// Changes are persisted, which is what makes the choice sticky.
func (m *Manager) Leader() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	nodes, err := m.nodes.List()
	if err != nil {
		return "", err
	}

	settings, err := m.settingsLocked()
	if err != nil {
		return "", err
	}

	elected := leader.Elect(nodes, settings.Leader)
	if elected != settings.Leader {
		settings.Leader = elected
		if err := m.store.PutSettings(settings); err != nil {
			return "", fmt.Errorf("failed to persist leader: %w", err)
		}
		m.logger.Info().Str("leader", leaderName(elected)).Msg("Leader elected")
		m.publish(events.EventLeaderElected,
			fmt.Sprintf("Leader is now %s", leaderName(elected)),
			map[string]string{"leader": leaderName(elected)})
	}

	return leaderName(elected), nil
}

// SetStrategy stores the cluster-wide placement strategy.
// Unrecognized names normalize to the default.
func (m *Manager) SetStrategy(name string) (types.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings, err := m.settingsLocked()
	if err != nil {
		return "", err
	}

	strategy := types.ParseStrategy(name)
	settings.Strategy = strategy
	if err := m.store.PutSettings(settings); err != nil {
		return "", fmt.Errorf("failed to persist strategy: %w", err)
	}

	m.logger.Info().Str("strategy", string(strategy)).Msg("Placement strategy changed")
	m.publish(events.EventStrategyChanged,
		fmt.Sprintf("Placement strategy is now %s", strategy),
		map[string]string{"strategy": string(strategy)})
	return strategy, nil
}

// GetStrategy returns the current placement strategy.
func (m *Manager) GetStrategy() (types.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strategyLocked()
}

// Metrics computes the cluster snapshot in one critical section so the
// three figures are mutually consistent.
func (m *Manager) Metrics() (*types.MetricsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// snapshotLocked rolls up healthy-node count, free CPU over healthy
// nodes, and running-pod count. Lock must be held.
func (m *Manager) snapshotLocked() (*types.MetricsSnapshot, error) {
	nodes, err := m.nodes.List()
	if err != nil {
		return nil, err
	}
	pods, err := m.pods.List()
	if err != nil {
		return nil, err
	}

	snap := &types.MetricsSnapshot{}
	for _, node := range nodes {
		if node.Status == types.NodeStatusHealthy {
			snap.HealthyNodes++
			snap.AvailableCPU += node.AvailableCPU
		}
	}
	for _, pod := range pods {
		if pod.Status == types.PodStatusRunning {
			snap.RunningPods++
		}
	}
	return snap, nil
}

// DetectFailures is one failure-detector sweep: every healthy node
// whose heartbeat is strictly older than the liveness window is marked
// unhealthy and its pods evicted, each node in the same critical
// section as its evictions. Returns the number of nodes failed.
func (m *Manager) DetectFailures() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics.DetectorSweeps.Inc()

	nodes, err := m.nodes.List()
	if err != nil {
		return 0, err
	}

	now := m.clock.Now()
	failed := 0
	for _, node := range nodes {
		if node.Status != types.NodeStatusHealthy {
			continue
		}
		if now.Sub(node.LastHeartbeat) <= m.cfg.LivenessWindow {
			continue
		}

		if err := m.failLocked(node.ID); err != nil {
			m.logger.Error().Err(err).Str("node_id", node.ID).Msg("Failed to fail stale node")
			continue
		}
		metrics.NodesFailed.Inc()
		m.logger.Warn().Str("node_id", node.ID).Msg("Node failed heartbeat check")
		failed++
	}
	return failed, nil
}

// ReschedulePending is one rescheduler sweep: every pending pod is
// re-submitted to the scheduler under the current strategy. Pods that
// still fit nowhere stay pending for the next cycle; retry is
// unconditional, with no backoff and no attempt limit. Returns the
// number of pods placed.
func (m *Manager) ReschedulePending() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending, err := m.pods.ListPending()
	if err != nil {
		return 0, err
	}

	placed := 0
	for _, pod := range pending {
		metrics.RescheduleAttempts.Inc()
		if _, err := m.placeLocked(pod); err != nil {
			if !errors.Is(err, types.ErrNoFeasibleNode) {
				m.logger.Error().Err(err).Str("pod_id", pod.ID).Msg("Reschedule attempt failed")
			}
			continue
		}
		placed++
	}
	return placed, nil
}

// RefreshHeartbeats is one simulator sweep: every node's heartbeat is
// stamped now. Status is untouched, so a manually failed node stays
// failed until recovered or heartbeated for real.
func (m *Manager) RefreshHeartbeats() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes.RefreshAll()
}

// LivenessWindow returns the configured heartbeat staleness bound.
func (m *Manager) LivenessWindow() time.Duration {
	return m.cfg.LivenessWindow
}

// DefaultNodeCPU returns the capacity given to nodes created without
// an explicit cpu value.
func (m *Manager) DefaultNodeCPU() int {
	return m.cfg.DefaultNodeCPU
}

// EventBroker returns the event broker for streaming subscriptions.
func (m *Manager) EventBroker() *events.Broker {
	return m.broker
}

func (m *Manager) publish(eventType events.EventType, message string, metadata map[string]string) {
	if m.broker != nil {
		m.broker.Publish(events.New(eventType, message, metadata))
	}
}

// Shutdown stops the event broker and closes the store.
func (m *Manager) Shutdown() error {
	if m.broker != nil {
		m.broker.Stop()
	}
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}
	return nil
}

// settingsLocked loads the settings record, tolerating records written
// before a field existed. Lock must be held.
func (m *Manager) settingsLocked() (*types.Settings, error) {
	settings, err := m.store.GetSettings()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &types.Settings{Strategy: types.DefaultStrategy}, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.Strategy == "" {
		settings.Strategy = types.DefaultStrategy
	}
	return settings, nil
}

// strategyLocked returns the current strategy. Lock must be held.
func (m *Manager) strategyLocked() (types.Strategy, error) {
	settings, err := m.settingsLocked()
	if err != nil {
		return "", err
	}
	return settings.Strategy, nil
}

func leaderName(id string) string {
	if id == "" {
		return types.NoLeader
	}
	return id
}
