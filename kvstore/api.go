package kvstore

import "context"

// Store is a fixed-capacity, sharded key/value store with LRU eviction.
// All methods are safe for concurrent use by multiple goroutines.
//
// Every keyed operation hashes the key, picks shard hash mod Shards() and
// runs entirely under that one shard's lock. Operations on the same shard
// are linearizable; operations on different shards are unordered.
type Store interface {
	// Put inserts or overwrites key. When the key's shard is full the least
	// recently used entry of that shard is evicted first.
	// Oversized input is rejected with a *BoundError or truncated, according
	// to Options.Oversize. After Close, Put returns ErrClosed.
	Put(key, value []byte) error

	// Get returns a copy of the value stored under key.
	// Under RecencyAccess a hit also promotes the entry to most recently used.
	Get(key []byte) ([]byte, bool)

	// GetInto is Get that appends the value to dst instead of allocating.
	GetInto(dst, key []byte) ([]byte, bool)

	// Erase removes key and reports whether it was present.
	Erase(key []byte) bool

	// Size returns the number of resident entries. Shards are visited one at
	// a time, so under concurrent writes the total is approximate.
	Size() int

	// Capacity returns the effective total capacity (per-shard capacity times
	// the shard count).
	Capacity() int

	// Shards returns the number of shards.
	Shards() int

	// Stats returns cumulative counters and the current size.
	Stats() Stats

	// GetOrLoad returns the value for key, loading it via Options.Loader on
	// miss and storing the result. Concurrent loads of one key are coalesced.
	// ctx bounds only the caller's wait. Returns ErrNoLoader without a Loader.
	GetOrLoad(ctx context.Context, key []byte) ([]byte, error)

	// Close marks the store closed: writes fail with ErrClosed, reads miss.
	Close() error
}
