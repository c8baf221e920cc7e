package db

import (
	"context"
	"sync"
)

// KV is the key-value store the classroom collections are persisted in.
// Each collection lives under one key as a JSON array.
type KV interface {
	// Get returns the value stored at key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string) (bool, error)
	// SetAll writes every key in values as one atomic step.
	SetAll(ctx context.Context, values map[string]string) error
	Ping(ctx context.Context) error
}

// MemoryKV is an in-process KV, used by tests and the "memory" driver
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) SetNX(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *MemoryKV) SetAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryKV) Ping(context.Context) error {
	return nil
}
