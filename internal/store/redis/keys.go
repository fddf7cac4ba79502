package redis

const (
	// DefaultKeyPrefix namespaces every collection key
	DefaultKeyPrefix = "snapstash:"
)

// CollectionKey returns the Redis key holding a collection
func CollectionKey(prefix, name string) string {
	return prefix + name
}
