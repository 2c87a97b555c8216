// Package cache provides insert-if-absent payload caches for upstream
// objects that are immutable after their first successful fetch.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store is a concurrency-safe byte store with insert-if-absent semantics.
// Entries are never updated or evicted; historical clinical payloads do not
// change upstream.
type Store interface {
	// Get returns the stored value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetNX stores value under key unless the key already exists.
	SetNX(ctx context.Context, key string, value []byte) error
}

// Memory is a process-scoped in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *Memory) SetNX(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return nil
	}
	m.entries[key] = value
	return nil
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// GetOrFetch returns the JSON payload cached under key, calling fetch and
// storing the result on a miss. The boolean reports whether the cache served
// the payload. A corrupt cached entry is treated as a miss. Fetch failures
// are returned to the caller and nothing is stored.
func GetOrFetch(ctx context.Context, s Store, key string, fetch func(context.Context) (any, error)) (any, bool, error) {
	if raw, ok, err := s.Get(ctx, key); err == nil && ok {
		var payload any
		if err := json.Unmarshal(raw, &payload); err == nil {
			return payload, true, nil
		}
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("cache: marshal payload for %s: %w", key, err)
	}
	// A store failure only costs a refetch later; the payload is still good.
	_ = s.SetNX(ctx, key, raw)
	return payload, false, nil
}
