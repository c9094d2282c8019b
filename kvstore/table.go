package kvstore

import "bytes"

// noSlot is returned by find when a full scan resolved nothing: every bucket
// is occupied by another key. The caller must evict before inserting.
const noSlot = -1

// table is a fixed open-addressing bucket array with linear probing and
// tombstones. It holds slot indices into the shard's arena.
type table struct {
	buckets []bucket
}

func newTable(size int) table {
	b := make([]bucket, size)
	for i := range b {
		b[i].node = nilIdx
	}
	return table{buckets: b}
}

func (t *table) home(hash uint64) int {
	return int(hash % uint64(len(t.buckets)))
}

func (t *table) next(i int) int {
	i++
	if i == len(t.buckets) {
		return 0
	}
	return i
}

// find probes for key starting at its home bucket.
//
// On a hit it returns (true, slot of the occupied bucket). On a miss it
// returns the canonical insertion point: the first tombstone passed, else the
// empty bucket that ended the probe. If the probe wraps all the way around
// without meeting an empty bucket, the first tombstone is still returned when
// there was one and noSlot otherwise.
func (t *table) find(a *arena, key []byte, hash uint64) (found bool, slot int) {
	start := t.home(hash)
	tomb := noSlot
	for i := start; ; {
		b := &t.buckets[i]
		switch b.state {
		case bucketEmpty:
			if tomb != noSlot {
				return false, tomb
			}
			return false, i
		case bucketDeleted:
			if tomb == noSlot {
				tomb = i
			}
		case bucketOccupied:
			if b.hash == hash && bytes.Equal(a.key(b.node), key) {
				return true, i
			}
		}
		if i = t.next(i); i == start {
			return false, tomb
		}
	}
}

// locate re-probes from the home bucket of hash for the occupied bucket that
// references arena slot idx. It returns noSlot if no such bucket exists on
// the probe sequence, which means the table and list are out of sync.
func (t *table) locate(idx int32, hash uint64) int {
	start := t.home(hash)
	for i := start; ; {
		b := &t.buckets[i]
		switch b.state {
		case bucketEmpty:
			return noSlot
		case bucketOccupied:
			if b.node == idx {
				return i
			}
		}
		if i = t.next(i); i == start {
			return noSlot
		}
	}
}

// occupy binds bucket slot to arena slot idx.
func (t *table) occupy(slot int, idx int32, hash uint64) {
	t.buckets[slot] = bucket{hash: hash, node: idx, state: bucketOccupied}
}

// tombstone marks slot deleted. Buckets never return to empty, so keys
// further along the same probe sequence stay reachable.
func (t *table) tombstone(slot int) {
	b := &t.buckets[slot]
	b.node = nilIdx
	b.state = bucketDeleted
}
