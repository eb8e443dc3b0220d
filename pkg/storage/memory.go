package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/roost-io/roost/pkg/types"
)

// MemoryStore is a map-backed implementation of the Store interface,
// used by unit tests and the "memory" backend. Records are kept as
// JSON, the same representation BoltStore uses, so callers get copy
// semantics instead of shared pointers.
type MemoryStore struct {
	mu       sync.RWMutex
	nodes    map[string][]byte
	pods     map[string][]byte
	settings []byte
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string][]byte),
		pods:  make(map[string][]byte),
	}
}

// Close closes the memory store.
func (m *MemoryStore) Close() error {
	// No-op for memory store
	return nil
}

// Reset drops all records.
func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = make(map[string][]byte)
	m.pods = make(map[string][]byte)
	m.settings = nil
	return nil
}

// Node operations
func (m *MemoryStore) CreateNode(node *types.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.ID] = data
	return nil
}

func (m *MemoryStore) GetNode(id string) (*types.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}

	var node types.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// ListNodes returns nodes sorted by id, matching bbolt's key order.
func (m *MemoryStore) ListNodes() ([]*types.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var nodes []*types.Node
	for _, id := range sortedKeys(m.nodes) {
		var node types.Node
		if err := json.Unmarshal(m.nodes[id], &node); err != nil {
			return nil, err
		}
		nodes = append(nodes, &node)
	}
	return nodes, nil
}

func (m *MemoryStore) UpdateNode(node *types.Node) error {
	return m.CreateNode(node) // Same as create (upsert)
}

func (m *MemoryStore) DeleteNode(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[id]; !ok {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	delete(m.nodes, id)
	return nil
}

// Pod operations
func (m *MemoryStore) CreatePod(pod *types.Pod) error {
	data, err := json.Marshal(pod)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pods[pod.ID] = data
	return nil
}

func (m *MemoryStore) GetPod(id string) (*types.Pod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.pods[id]
	if !ok {
		return nil, fmt.Errorf("pod %s: %w", id, ErrNotFound)
	}

	var pod types.Pod
	if err := json.Unmarshal(data, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

func (m *MemoryStore) ListPods() ([]*types.Pod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pods []*types.Pod
	for _, id := range sortedKeys(m.pods) {
		var pod types.Pod
		if err := json.Unmarshal(m.pods[id], &pod); err != nil {
			return nil, err
		}
		pods = append(pods, &pod)
	}
	return pods, nil
}

func (m *MemoryStore) ListPodsByNode(nodeID string) ([]*types.Pod, error) {
	pods, err := m.ListPods()
	if err != nil {
		return nil, err
	}

	var filtered []*types.Pod
	for _, pod := range pods {
		if pod.NodeID == nodeID {
			filtered = append(filtered, pod)
		}
	}
	return filtered, nil
}

func (m *MemoryStore) UpdatePod(pod *types.Pod) error {
	return m.CreatePod(pod) // Same as create (upsert)
}

func (m *MemoryStore) DeletePod(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pods[id]; !ok {
		return fmt.Errorf("pod %s: %w", id, ErrNotFound)
	}
	delete(m.pods, id)
	return nil
}

// Settings operations
func (m *MemoryStore) GetSettings() (*types.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, fmt.Errorf("settings: %w", ErrNotFound)
	}

	var settings types.Settings
	if err := json.Unmarshal(m.settings, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (m *MemoryStore) PutSettings(settings *types.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = data
	return nil
}

func sortedKeys(records map[string][]byte) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
