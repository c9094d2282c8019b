package kvstore

// nilIdx marks the absence of a slot index (list end, free-list end,
// empty bucket reference).
const nilIdx int32 = -1

// node is the metadata of one arena slot. Key and value bytes live in the
// arena's slabs at the slot's fixed offsets; node only records their lengths.
//
// A node is either free (threaded on the arena free list through next) or
// live (linked into the shard's LRU list and referenced by exactly one
// occupied bucket).
type node struct {
	hash uint64

	// LRU links as arena slot indices: head is MRU, tail is LRU.
	// While the node is free, next links the free list and prev is nilIdx.
	prev int32
	next int32

	keyLen int32
	valLen int32
}

// bucketState is the tri-state tag of a table slot.
type bucketState uint8

const (
	bucketEmpty bucketState = iota
	bucketOccupied
	bucketDeleted // tombstone
)

func (s bucketState) String() string {
	switch s {
	case bucketEmpty:
		return "empty"
	case bucketOccupied:
		return "occupied"
	case bucketDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// bucket maps a cached hash to a live arena slot.
// node is meaningful only while state == bucketOccupied.
type bucket struct {
	hash  uint64
	node  int32
	state bucketState
}
