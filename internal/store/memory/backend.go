// Package memory is a process-local Backend, used for tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"
)

// Backend keeps collections in a map. Values are copied in and out.
type Backend struct {
	mu          sync.RWMutex
	collections map[string][]byte
}

// NewBackend creates an empty in-memory backend
func NewBackend() *Backend {
	return &Backend{
		collections: make(map[string][]byte),
	}
}

// Load returns copies of the named collections that exist
func (b *Backend) Load(_ context.Context, names ...string) (map[string][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string][]byte, len(names))
	for _, name := range names {
		if data, ok := b.collections[name]; ok {
			out[name] = clone(data)
		}
	}
	return out, nil
}

// Save replaces every collection in values under one lock
func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for name, data := range values {
		b.collections[name] = clone(data)
	}
	return nil
}

// Ping always succeeds
func (b *Backend) Ping(context.Context) error { return nil }

// Close is a no-op
func (b *Backend) Close() error { return nil }

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
