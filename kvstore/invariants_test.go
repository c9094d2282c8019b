package kvstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// checkInvariants walks one shard under its lock and asserts that the bucket
// table, LRU list and arena agree with each other and with the live counter.
func (s *shard) checkInvariants(t testing.TB) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.arena.nodes
	referenced := make(map[int32]bool, s.count)
	occupied := 0
	for i, b := range s.table.buckets {
		if b.state != bucketOccupied {
			require.Equalf(t, nilIdx, b.node, "shard %d bucket %d is %s but references slot %d", s.id, i, b.state, b.node)
			continue
		}
		occupied++
		require.Truef(t, b.node >= 0 && int(b.node) < s.capacity, "bucket %d references out-of-range slot %d", i, b.node)
		require.Falsef(t, referenced[b.node], "slot %d referenced by two buckets", b.node)
		referenced[b.node] = true
		require.Falsef(t, s.arena.isFree(b.node), "bucket %d references free slot %d", i, b.node)
		require.Equal(t, b.hash, nodes[b.node].hash)

		// The first match on the key's probe sequence must be this bucket.
		found, slot := s.table.find(&s.arena, s.arena.key(b.node), b.hash)
		require.True(t, found)
		require.Equalf(t, i, slot, "key %q resolves to bucket %d, stored in %d", s.arena.key(b.node), slot, i)
	}

	listLen := 0
	prev := nilIdx
	s.lru.walk(s.capacity+1, func(i int32) bool {
		require.Equalf(t, prev, nodes[i].prev, "broken prev link at slot %d", i)
		require.Truef(t, referenced[i], "listed slot %d has no bucket", i)
		prev = i
		listLen++
		return true
	})
	require.Equal(t, prev, s.lru.tail)

	freeLen := 0
	for i := s.arena.free; i != nilIdx && freeLen <= s.capacity; i = nodes[i].next {
		require.True(t, s.arena.isFree(i))
		freeLen++
	}

	require.Equal(t, occupied, s.count, "occupied buckets vs live counter")
	require.Equal(t, listLen, s.count, "list length vs live counter")
	require.Equal(t, s.arena.inUse, s.count, "used arena slots vs live counter")
	require.Equal(t, s.capacity-s.count, freeLen, "free list length")
	require.LessOrEqual(t, s.count, s.capacity)
}

func checkStore(t testing.TB, st Store) {
	t.Helper()
	for _, s := range st.(*store).shards {
		s.checkInvariants(t)
	}
}

// catchInvariant runs fn and returns the *InvariantError it panicked with.
func catchInvariant(fn func()) (ie *InvariantError) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				errors.As(err, &ie)
			}
		}
	}()
	fn()
	return nil
}

func testShard(capacity int, opt Options) *shard {
	opt.Capacity = capacity
	opt.Shards = 1
	opt, err := opt.withDefaults()
	if err != nil {
		panic(err)
	}
	return newShard(0, capacity, opt)
}
