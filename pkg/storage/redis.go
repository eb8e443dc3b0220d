package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/roost-io/roost/pkg/types"
)

// RedisStore implements the Store interface using Redis. Records are
// JSON strings under prefixed keys, with one index set per record kind
// so listing does not depend on SCAN ordering.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed store from a redis:// URI.
func NewRedisStore(redisURI string) (*RedisStore, error) {
	if redisURI == "" {
		return nil, errors.New("redis URI is required")
	}

	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URI: %w", err)
	}

	return &RedisStore{
		client:    redis.NewClient(opts),
		keyPrefix: "roost:",
	}, nil
}

// formNodeKey creates the key holding one node record
func (r *RedisStore) formNodeKey(id string) string {
	return r.keyPrefix + "node:" + id
}

// formPodKey creates the key holding one pod record
func (r *RedisStore) formPodKey(id string) string {
	return r.keyPrefix + "pod:" + id
}

func (r *RedisStore) nodeIndexKey() string {
	return r.keyPrefix + "nodes"
}

func (r *RedisStore) podIndexKey() string {
	return r.keyPrefix + "pods"
}

func (r *RedisStore) settingsKey() string {
	return r.keyPrefix + "settings"
}

// Close closes the Redis client connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Reset removes every key under the store's prefix.
func (r *RedisStore) Reset() error {
	ctx := context.Background()

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys for reset: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys for reset: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Node operations
func (r *RedisStore) CreateNode(node *types.Node) error {
	ctx := context.Background()

	data, err := json.Marshal(node)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.formNodeKey(node.ID), data, 0)
	pipe.SAdd(ctx, r.nodeIndexKey(), node.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store node %s: %w", node.ID, err)
	}
	return nil
}

func (r *RedisStore) GetNode(id string) (*types.Node, error) {
	ctx := context.Background()

	data, err := r.client.Get(ctx, r.formNodeKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get node %s: %w", id, err)
	}

	var node types.Node
	if err := json.Unmarshal([]byte(data), &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *RedisStore) ListNodes() ([]*types.Node, error) {
	ctx := context.Background()

	ids, err := r.client.SMembers(ctx, r.nodeIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list node ids: %w", err)
	}
	sort.Strings(ids) // Set members come back unordered

	var nodes []*types.Node
	for _, id := range ids {
		node, err := r.GetNode(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // Index entry outlived the record
			}
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (r *RedisStore) UpdateNode(node *types.Node) error {
	return r.CreateNode(node) // Same as create (upsert)
}

func (r *RedisStore) DeleteNode(id string) error {
	ctx := context.Background()

	exists, err := r.client.Exists(ctx, r.formNodeKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check node %s: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.formNodeKey(id))
	pipe.SRem(ctx, r.nodeIndexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}
	return nil
}

// Pod operations
func (r *RedisStore) CreatePod(pod *types.Pod) error {
	ctx := context.Background()

	data, err := json.Marshal(pod)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.formPodKey(pod.ID), data, 0)
	pipe.SAdd(ctx, r.podIndexKey(), pod.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store pod %s: %w", pod.ID, err)
	}
	return nil
}

func (r *RedisStore) GetPod(id string) (*types.Pod, error) {
	ctx := context.Background()

	data, err := r.client.Get(ctx, r.formPodKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("pod %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pod %s: %w", id, err)
	}

	var pod types.Pod
	if err := json.Unmarshal([]byte(data), &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

func (r *RedisStore) ListPods() ([]*types.Pod, error) {
	ctx := context.Background()

	ids, err := r.client.SMembers(ctx, r.podIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pod ids: %w", err)
	}
	sort.Strings(ids)

	var pods []*types.Pod
	for _, id := range ids {
		pod, err := r.GetPod(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		pods = append(pods, pod)
	}
	return pods, nil
}

func (r *RedisStore) ListPodsByNode(nodeID string) ([]*types.Pod, error) {
	pods, err := r.ListPods()
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

func (r *RedisStore) UpdatePod(pod *types.Pod) error {
	return r.CreatePod(pod) // Same as create (upsert)
}

func (r *RedisStore) DeletePod(id string) error {
	ctx := context.Background()

	exists, err := r.client.Exists(ctx, r.formPodKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check pod %s: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("pod %s: %w", id, ErrNotFound)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.formPodKey(id))
	pipe.SRem(ctx, r.podIndexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete pod %s: %w", id, err)
	}
	return nil
}

// Settings operations
func (r *RedisStore) GetSettings() (*types.Settings, error) {
	ctx := context.Background()

	data, err := r.client.Get(ctx, r.settingsKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("settings: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings types.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *RedisStore) PutSettings(settings *types.Settings) error {
	ctx := context.Background()

	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.settingsKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}
