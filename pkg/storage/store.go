package storage

import (
	"errors"

	"github.com/roost-io/roost/pkg/types"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for cluster state storage.
//
// List methods return records in ascending id order. Placement and
// leader election iterate snapshots in that order, so every
// implementation must preserve it. Get and Delete return ErrNotFound
// (wrapped) for missing ids; Create and Update are both upserts.
type Store interface {
	// Nodes
	CreateNode(node *types.Node) error
	GetNode(id string) (*types.Node, error)
	ListNodes() ([]*types.Node, error)
	UpdateNode(node *types.Node) error
	DeleteNode(id string) error

	// Pods
	CreatePod(pod *types.Pod) error
	GetPod(id string) (*types.Pod, error)
	ListPods() ([]*types.Pod, error)
	ListPodsByNode(nodeID string) ([]*types.Pod, error)
	UpdatePod(pod *types.Pod) error
	DeletePod(id string) error

	// Settings is the single cluster-wide record (strategy, leader).
	GetSettings() (*types.Settings, error)
	PutSettings(settings *types.Settings) error

	// Reset drops all records, returning the store to a clean slate.
	Reset() error

	// Utility
	Close() error
}
