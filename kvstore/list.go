package kvstore

// lruList is an intrusive doubly linked list over arena slots.
// It shares the arena's node slice; links are slot indices, never pointers.
// head is the most recently used slot, tail the eviction candidate.
type lruList struct {
	nodes []node
	head  int32
	tail  int32
}

func newLRUList(nodes []node) lruList {
	return lruList{nodes: nodes, head: nilIdx, tail: nilIdx}
}

// pushFront links a detached slot at the MRU end.
func (l *lruList) pushFront(i int32) {
	n := &l.nodes[i]
	n.prev = nilIdx
	n.next = l.head
	if l.head != nilIdx {
		l.nodes[l.head].prev = i
	} else {
		l.tail = i
	}
	l.head = i
}

// unlink detaches slot i from the list.
func (l *lruList) unlink(i int32) {
	n := &l.nodes[i]
	if n.prev != nilIdx {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nilIdx {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nilIdx, nilIdx
}

// moveToFront promotes slot i to MRU.
func (l *lruList) moveToFront(i int32) {
	if i == l.head {
		return
	}
	l.unlink(i)
	l.pushFront(i)
}

// back returns the LRU slot, or nilIdx when the list is empty.
func (l *lruList) back() int32 { return l.tail }

// walk calls fn for each slot from MRU to LRU until fn returns false.
// At most limit slots are visited, which bounds the walk on a corrupted list.
func (l *lruList) walk(limit int, fn func(i int32) bool) {
	for i, n := l.head, 0; i != nilIdx && n < limit; i, n = l.nodes[i].next, n+1 {
		if !fn(i) {
			return
		}
	}
}
