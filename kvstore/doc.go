// Package kvstore provides a fixed-capacity, sharded, concurrent key/value
// store for short byte-string keys and values, with per-shard LRU eviction.
//
// Design
//
//   - Concurrency: the store is split into shards, each guarded by a single
//     lock (sync.Mutex, or a spin-then-yield lock with Options.Lock =
//     LockSpin). A key lives in shard hash mod Shards. No operation ever holds
//     two shard locks, so cross-shard deadlock cannot happen. Size and Stats
//     visit shards one at a time and are best-effort totals.
//
//   - Storage: each shard owns an open-addressing bucket table and a node
//     arena of the same length. A key's home bucket is hash mod capacity;
//     collisions probe linearly. Removal leaves a tombstone that later inserts
//     reuse (the first tombstone on the probe path wins over an empty bucket).
//     Tombstones never revert to empty; there is no rehash.
//
//   - Arena: node metadata, key bytes and value bytes for every slot are
//     allocated once in New. Free slots form an index-linked free list;
//     Put never allocates.
//
//   - LRU: an intrusive doubly linked list threaded through the arena by slot
//     index (head = most recent). When a shard is full, Put evicts the tail,
//     re-probing the table to find the bucket that references it.
//
//   - Recency: with the default RecencyAccess a successful Get promotes the
//     entry, giving true LRU. RecencyWrite promotes only on insert and update.
//
//   - Bounds: keys are at most MaxKeyLen (31) bytes and values at most
//     MaxValueLen (63). By default Put rejects longer input with a
//     *BoundError; OversizeTruncate keeps the first bytes instead.
//
//   - Failures: a table/list/arena desynchronisation is logged and the shard
//     panics with an *InvariantError rather than continuing with corrupt state.
//
// Basic usage
//
//	st, err := kvstore.New(kvstore.Options{Capacity: 1024, Shards: 8})
//	if err != nil {
//	    return err
//	}
//	if err := st.Put([]byte("user:42"), []byte("alice")); err != nil {
//	    return err
//	}
//	if v, ok := st.Get([]byte("user:42")); ok {
//	    _ = v // a copy; safe to keep
//	}
//	st.Erase([]byte("user:42"))
//
// Exporting metrics
//
//	m := prom.New(nil, "shardkv", "demo", nil) // implements Metrics
//	st, _ := kvstore.New(kvstore.Options{Capacity: 1 << 16, Metrics: m})
package kvstore
