package util

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is a reasonable default for most modern CPUs.
const CacheLineSize = 64

// CacheLinePad separates hot fields into distinct cache lines to reduce false
// sharing. It is sized by x/sys/cpu for the target architecture.
type CacheLinePad = cpu.CacheLinePad

// PaddedAtomicUint64 is an atomic uint64 padded to exactly one cache line.
// Shards keep their hit/miss/eviction counters in these so that readers of
// Stats never bounce the line holding the shard lock.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

var _ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicUint64{}))]byte
