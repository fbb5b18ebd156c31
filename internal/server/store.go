package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gravitas-games/hexgrid/pkg/mesh"
)

// MeshStore keeps published meshes where out-of-process render hosts can
// pick them up
type MeshStore interface {
	Put(ctx context.Context, key string, m *mesh.Mesh) error
	Get(ctx context.Context, key string) (*mesh.Mesh, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// RedisMeshStore stores meshes as JSON strings and announces each new key
// on a pub/sub channel
type RedisMeshStore struct {
	client  *redis.Client
	channel string
	ttl     time.Duration
}

// NewRedisMeshStore creates a Redis-backed mesh store
func NewRedisMeshStore(client *redis.Client, channel string, ttl time.Duration) *RedisMeshStore {
	return &RedisMeshStore{client: client, channel: channel, ttl: ttl}
}

// Put replaces the mesh at key and publishes the key on the channel
func (s *RedisMeshStore) Put(ctx context.Context, key string, m *mesh.Mesh) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode mesh: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, s.ttl)
		pipe.Publish(ctx, s.channel, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store mesh %s: %w", key, err)
	}
	return nil
}

// Get loads the mesh at key
func (s *RedisMeshStore) Get(ctx context.Context, key string) (*mesh.Mesh, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load mesh %s: %w", key, err)
	}

	var m mesh.Mesh
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("failed to decode mesh %s: %w", key, err)
	}
	return &m, true, nil
}

// Delete removes the mesh at key
func (s *RedisMeshStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete mesh %s: %w", key, err)
	}
	return n > 0, nil
}

// MemoryMeshStore is an in-process MeshStore used when Redis is not
// configured
type MemoryMeshStore struct {
	mu     sync.RWMutex
	meshes map[string]*mesh.Mesh
}

// NewMemoryMeshStore creates an empty in-memory store
func NewMemoryMeshStore() *MemoryMeshStore {
	return &MemoryMeshStore{meshes: make(map[string]*mesh.Mesh)}
}

// Put stores m under key
func (s *MemoryMeshStore) Put(ctx context.Context, key string, m *mesh.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes[key] = m
	return nil
}

// Get returns the mesh stored under key
func (s *MemoryMeshStore) Get(ctx context.Context, key string) (*mesh.Mesh, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[key]
	return m, ok, nil
}

// Delete removes the mesh stored under key
func (s *MemoryMeshStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.meshes[key]
	delete(s.meshes, key)
	return ok, nil
}

// meshKey is the store key for a grid's published mesh
func meshKey(prefix, gridName string) string {
	return prefix + gridName
}
