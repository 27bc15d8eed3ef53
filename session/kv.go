// Package session keeps a signed-in user's tokens on the client side and keeps
// them fresh. It is the Go counterpart of a browser's localStorage session.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/skillup-auth/internal/errors"
)

// ErrNotFound is returned by KV.Get for absent keys.
var ErrNotFound = errors.ErrNotFound

// KV is a durable string key/value area.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

var _ KV = (*MemoryKV)(nil)

// MemoryKV is a per-process KV.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
