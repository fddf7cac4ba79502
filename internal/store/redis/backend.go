package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend stores each collection as a JSON string under its own key.
type Backend struct {
	client *redis.Client
	prefix string
}

// NewBackend creates a Redis backend. An empty prefix uses DefaultKeyPrefix.
func NewBackend(client *redis.Client, prefix string) *Backend {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Backend{
		client: client,
		prefix: prefix,
	}
}

// Load reads the named collections with a single MGET
func (b *Backend) Load(ctx context.Context, names ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(names))
	if len(names) == 0 {
		return out, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = CollectionKey(b.prefix, name)
	}

	values, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get collections: %w", err)
	}

	for i, v := range values {
		// Missing keys come back as nil
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T for %s", v, keys[i])
		}
		out[names[i]] = []byte(s)
	}

	return out, nil
}

// Save writes all collections inside MULTI/EXEC so readers never see half an update
func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, data := range values {
			pipe.Set(ctx, CollectionKey(b.prefix, name), data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save collections: %w", err)
	}
	return nil
}

// Ping checks the connection
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (b *Backend) Close() error {
	return b.client.Close()
}
