package godb

// Configuration constants per spec.md §6: page size (default 4096),
// buffer-pool capacity (default 50), lock-manager policy (fixed: wound-wait,
// not configurable). Passed explicitly rather than read from package
// globals, per spec.md §9's redesign note on the teacher's global
// singletons.

// Config bundles the process-wide tunables every HeapFile/BufferPool in a
// Database must agree on.
type Config struct {
	// PageSize is the fixed size, in bytes, of every page in every
	// HeapFile sharing this Config.
	PageSize int
	// BufferPoolCapacity is the maximum number of resident pages a
	// BufferPool constructed with this Config will cache.
	BufferPoolCapacity int
}

// DefaultConfig returns spec.md's defaults: 4096-byte pages, a 50-page
// buffer pool.
func DefaultConfig() Config {
	return Config{
		PageSize:           4096,
		BufferPoolCapacity: 50,
	}
}
