package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/roost-io/roost/pkg/types"
)

var (
	// Bucket names
	bucketNodes    = []byte("nodes")
	bucketPods     = []byte("pods")
	bucketSettings = []byte("settings")

	// Fixed key for the single settings record
	keySettings = []byte("settings")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "roost.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		return createBuckets(tx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func createBuckets(tx *bolt.Tx) error {
	buckets := [][]byte{
		bucketNodes,
		bucketPods,
		bucketSettings,
	}

	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Reset drops every bucket and recreates it empty.
func (s *BoltStore) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketNodes,
			bucketPods,
			bucketSettings,
		}

		for _, bucket := range buckets {
			if err := tx.DeleteBucket(bucket); err != nil {
				return fmt.Errorf("failed to delete bucket %s: %w", bucket, err)
			}
		}
		return createBuckets(tx)
	})
}

// Node operations
func (s *BoltStore) CreateNode(node *types.Node) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		return b.Put([]byte(node.ID), data)
	})
}

func (s *BoltStore) GetNode(id string) (*types.Node, error) {
	var node types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &node)
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// ListNodes returns nodes in key order; bbolt iterates keys sorted,
// which gives the ascending id order the Store contract requires.
func (s *BoltStore) ListNodes() ([]*types.Node, error) {
	var nodes []*types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		return b.ForEach(func(k, v []byte) error {
			var node types.Node
			if err := json.Unmarshal(v, &node); err != nil {
				return err
			}
			nodes = append(nodes, &node)
			return nil
		})
	})
	return nodes, err
}

func (s *BoltStore) UpdateNode(node *types.Node) error {
	return s.CreateNode(node) // Same as create (upsert)
}

func (s *BoltStore) DeleteNode(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}

// Pod operations
func (s *BoltStore) CreatePod(pod *types.Pod) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPods)
		data, err := json.Marshal(pod)
		if err != nil {
			return err
		}
		return b.Put([]byte(pod.ID), data)
	})
}

func (s *BoltStore) GetPod(id string) (*types.Pod, error) {
	var pod types.Pod
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPods)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("pod %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &pod)
	})
	if err != nil {
		return nil, err
	}
	return &pod, nil
}

func (s *BoltStore) ListPods() ([]*types.Pod, error) {
	var pods []*types.Pod
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPods)
		return b.ForEach(func(k, v []byte) error {
			var pod types.Pod
			if err := json.Unmarshal(v, &pod); err != nil {
				return err
			}
			pods = append(pods, &pod)
			return nil
		})
	})
	return pods, err
}

func (s *BoltStore) ListPodsByNode(nodeID string) ([]*types.Pod, error) {
	pods, err := s.ListPods()
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

func (s *BoltStore) UpdatePod(pod *types.Pod) error {
	return s.CreatePod(pod) // Same as create (upsert)
}

func (s *BoltStore) DeletePod(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPods)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("pod %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}

// Settings operations
func (s *BoltStore) GetSettings() (*types.Settings, error) {
	var settings types.Settings
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		data := b.Get(keySettings)
		if data == nil {
			return fmt.Errorf("settings: %w", ErrNotFound)
		}
		return json.Unmarshal(data, &settings)
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *BoltStore) PutSettings(settings *types.Settings) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		data, err := json.Marshal(settings)
		if err != nil {
			return err
		}
		return b.Put(keySettings, data)
	})
}
