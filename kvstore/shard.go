package kvstore

import (
	"log/slog"
	"sync"

	"github.com/IvanBrykalov/shardkv/internal/spin"
	"github.com/IvanBrykalov/shardkv/internal/util"
)

// shard is an independent partition of the store: a bucket table, a node
// arena of the same length, an LRU list over the arena, and one lock that
// guards all three.
type shard struct {
	// ---- guarded by mu ----
	mu    sync.Locker
	table table
	arena arena
	lru   lruList
	count int // live entries

	id       int
	capacity int
	promote  bool // Get promotes to MRU
	onEvict  func(key, value []byte)
	metrics  Metrics
	log      *slog.Logger

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

func newShard(id, capacity int, opt Options) *shard {
	s := &shard{
		table:    newTable(capacity),
		arena:    newArena(capacity, opt.MaxKeyLen, opt.MaxValueLen),
		id:       id,
		capacity: capacity,
		promote:  opt.Recency == RecencyAccess,
		onEvict:  opt.OnEvict,
		metrics:  opt.Metrics,
		log:      opt.Logger,
	}
	s.lru = newLRUList(s.arena.nodes)
	if opt.Lock == LockSpin {
		s.mu = new(spin.Lock)
	} else {
		s.mu = new(sync.Mutex)
	}
	return s
}

// put inserts or overwrites key. key and value are already within bounds.
func (s *shard) put(key, value []byte, hash uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, slot := s.table.find(&s.arena, key, hash)
	if found {
		idx := s.table.buckets[slot].node
		s.arena.setValue(idx, value)
		s.arena.nodes[idx].hash = hash
		s.lru.moveToFront(idx)
		return
	}

	if s.count >= s.capacity {
		s.evictLocked()
		if found, slot = s.table.find(&s.arena, key, hash); found || slot == noSlot {
			s.fail("put", "no insertion slot after eviction")
		}
	}

	idx, ok := s.arena.alloc()
	if !ok {
		s.fail("put", "arena exhausted below capacity")
	}
	s.arena.set(idx, key, value, hash)
	s.lru.pushFront(idx)
	s.table.occupy(slot, idx, hash)
	s.count++
	s.metrics.Entries(1)
}

// get appends the value of key to dst while holding the lock.
func (s *shard) get(dst, key []byte, hash uint64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, slot := s.table.find(&s.arena, key, hash)
	if !found {
		s.misses.Add(1)
		s.metrics.Miss()
		return dst, false
	}
	idx := s.table.buckets[slot].node
	if s.promote {
		s.lru.moveToFront(idx)
	}
	s.hits.Add(1)
	s.metrics.Hit()
	return append(dst, s.arena.value(idx)...), true
}

// erase removes key and reports whether it was present.
func (s *shard) erase(key []byte, hash uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, slot := s.table.find(&s.arena, key, hash)
	if !found {
		return false
	}
	s.removeLocked(slot, s.table.buckets[slot].node, "erase")
	return true
}

func (s *shard) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// -------------------- internals (mu held) --------------------

// evictLocked drops the LRU entry. The node has no back-reference to its
// bucket, so the bucket is found by probing again from the node's home.
func (s *shard) evictLocked() {
	idx := s.lru.back()
	if idx == nilIdx {
		s.fail("evict", "shard is full but the LRU list is empty")
	}
	slot := s.table.locate(idx, s.arena.nodes[idx].hash)
	if slot == noSlot {
		s.fail("evict", "no bucket references the LRU tail")
	}
	if s.onEvict != nil {
		s.onEvict(s.arena.key(idx), s.arena.value(idx))
	}
	s.removeLocked(slot, idx, "evict")
	s.evicts.Add(1)
	s.metrics.Evict()
}

// removeLocked tombstones slot, unlinks idx and returns it to the arena.
func (s *shard) removeLocked(slot int, idx int32, op string) {
	s.table.tombstone(slot)
	s.lru.unlink(idx)
	if err := s.arena.release(idx); err != nil {
		s.fail(op, err.Error())
	}
	s.count--
	s.metrics.Entries(-1)
}

// fail reports a table/list/arena desynchronisation and panics. Continuing
// would risk returning another key's value.
func (s *shard) fail(op, detail string) {
	err := &InvariantError{Shard: s.id, Op: op, Detail: detail}
	s.log.Error("shard invariant violated",
		"shard", s.id,
		"op", op,
		"detail", detail,
		"count", s.count,
		"capacity", s.capacity,
	)
	panic(err)
}
