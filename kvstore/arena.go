package kvstore

import "fmt"

// arena is a fixed pool of node slots plus the key and value storage that
// backs them. Everything is allocated once in newArena; alloc and release only
// move slot indices on and off an intrusive free list.
type arena struct {
	nodes []node
	keys  []byte // slot i owns keys[i*maxKey : (i+1)*maxKey]
	vals  []byte // slot i owns vals[i*maxVal : (i+1)*maxVal]

	maxKey int
	maxVal int

	free  int32 // head of the free list
	inUse int
}

func newArena(capacity, maxKey, maxVal int) arena {
	a := arena{
		nodes:  make([]node, capacity),
		keys:   make([]byte, capacity*maxKey),
		vals:   make([]byte, capacity*maxVal),
		maxKey: maxKey,
		maxVal: maxVal,
		free:   nilIdx,
	}
	// Thread the free list so that slot 0 is handed out first.
	for i := capacity - 1; i >= 0; i-- {
		a.nodes[i] = freeNode(a.free)
		a.free = int32(i)
	}
	return a
}

// alloc takes a slot off the free list. ok is false when the arena is exhausted.
func (a *arena) alloc() (idx int32, ok bool) {
	idx = a.free
	if idx == nilIdx {
		return nilIdx, false
	}
	n := &a.nodes[idx]
	a.free = n.next
	*n = node{prev: nilIdx, next: nilIdx}
	a.inUse++
	return idx, true
}

// release returns slot idx to the free list and clears its metadata.
// The slab bytes are left as they are; lengths gate every read.
func (a *arena) release(idx int32) error {
	if idx < 0 || int(idx) >= len(a.nodes) {
		return fmt.Errorf("release of out-of-range slot %d", idx)
	}
	if a.isFree(idx) {
		return fmt.Errorf("double release of slot %d", idx)
	}
	a.nodes[idx] = freeNode(a.free)
	a.free = idx
	a.inUse--
	return nil
}

// set copies key and value into slot idx. Callers bound both lengths first.
func (a *arena) set(idx int32, key, val []byte, hash uint64) {
	n := &a.nodes[idx]
	n.hash = hash
	n.keyLen = int32(copy(a.keys[int(idx)*a.maxKey:(int(idx)+1)*a.maxKey], key))
	a.setValue(idx, val)
}

func (a *arena) setValue(idx int32, val []byte) {
	n := &a.nodes[idx]
	n.valLen = int32(copy(a.vals[int(idx)*a.maxVal:(int(idx)+1)*a.maxVal], val))
}

// key returns the arena-backed key bytes of slot idx.
// The slice aliases shard storage; use it only under the shard lock.
func (a *arena) key(idx int32) []byte {
	off := int(idx) * a.maxKey
	return a.keys[off : off+int(a.nodes[idx].keyLen) : off+a.maxKey]
}

// value returns the arena-backed value bytes of slot idx.
// The slice aliases shard storage; use it only under the shard lock.
func (a *arena) value(idx int32) []byte {
	off := int(idx) * a.maxVal
	return a.vals[off : off+int(a.nodes[idx].valLen) : off+a.maxVal]
}

func (a *arena) capacity() int { return len(a.nodes) }

// isFree reports whether slot idx is on the free list.
func (a *arena) isFree(idx int32) bool { return a.nodes[idx].keyLen < 0 }

// freeNode is the metadata of a free slot whose free-list successor is next.
// A negative keyLen tags the slot as free.
func freeNode(next int32) node {
	return node{prev: nilIdx, next: next, keyLen: -1}
}
