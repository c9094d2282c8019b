package kvstore

import (
	"context"
	"log/slog"
	"math"

	"github.com/IvanBrykalov/shardkv/internal/util"
)

// Default bounds: 32- and 64-byte slots, less one byte each.
const (
	DefaultMaxKeyLen   = 31
	DefaultMaxValueLen = 63

	// maxBound caps MaxKeyLen and MaxValueLen so slab sizes stay sane.
	maxBound = 1 << 20
)

// OversizePolicy decides what Put does with a key or value that exceeds its bound.
type OversizePolicy int

const (
	// OversizeReject makes Put return a *BoundError and store nothing.
	OversizeReject OversizePolicy = iota
	// OversizeTruncate silently stores the first MaxKeyLen/MaxValueLen bytes.
	// Lookups truncate their key the same way, so a long key is reachable
	// under its own spelling and under its truncated prefix.
	OversizeTruncate
)

// Recency decides which operations count as a "use" for LRU ordering.
type Recency int

const (
	// RecencyAccess promotes on insert, update and successful Get (true LRU).
	RecencyAccess Recency = iota
	// RecencyWrite promotes on insert and update only; Get leaves order alone.
	RecencyWrite
)

func (r Recency) String() string {
	if r == RecencyWrite {
		return "write"
	}
	return "access"
}

// LockKind selects the per-shard mutual exclusion primitive.
type LockKind int

const (
	// LockMutex uses sync.Mutex.
	LockMutex LockKind = iota
	// LockSpin uses a spin-then-yield lock; for short critical sections under
	// low oversubscription.
	LockSpin
)

func (k LockKind) String() string {
	if k == LockSpin {
		return "spin"
	}
	return "mutex"
}

// HashKind selects the key hash used for shard routing and bucket placement.
type HashKind int

const (
	// HashFNV1a is 64-bit FNV-1a.
	HashFNV1a HashKind = iota
	// HashXXH64 is xxHash64.
	HashXXH64
)

func (k HashKind) String() string {
	if k == HashXXH64 {
		return "xxh64"
	}
	return "fnv1a"
}

func (k HashKind) fn() func([]byte) uint64 {
	if k == HashXXH64 {
		return util.XXH64
	}
	return util.Fnv64a
}

// Options configures a Store. Capacity is required; zero values elsewhere
// select defaults in New:
//   - Shards <= 0      => util.ReasonableShardCount(), at most Capacity
//   - MaxKeyLen == 0   => DefaultMaxKeyLen
//   - MaxValueLen == 0 => DefaultMaxValueLen
//   - nil Metrics      => NoopMetrics
//   - nil Logger       => discard
type Options struct {
	// Capacity is the total entry limit. Each shard holds
	// ceil(Capacity/Shards) entries.
	Capacity int

	// Shards is the number of independently locked partitions.
	// Any positive value is accepted; keys route by hash mod Shards.
	Shards int

	MaxKeyLen   int
	MaxValueLen int
	Oversize    OversizePolicy

	Recency Recency
	Lock    LockKind
	Hash    HashKind

	// Loader fetches a value on miss. Used by GetOrLoad.
	Loader func(ctx context.Context, key []byte) ([]byte, error)

	// OnEvict is called under the shard lock for every LRU eviction. key and
	// value alias arena storage and are only valid during the call.
	OnEvict func(key, value []byte)

	Metrics Metrics
	Logger  *slog.Logger
}

// withDefaults validates o and fills in defaults.
func (o Options) withDefaults() (Options, error) {
	if o.Capacity <= 0 {
		return o, invalidOption("Capacity must be > 0, got %d", o.Capacity)
	}
	if o.Shards <= 0 {
		o.Shards = min(util.ReasonableShardCount(), o.Capacity)
	} else if o.Shards > o.Capacity {
		return o, invalidOption("Shards (%d) exceeds Capacity (%d)", o.Shards, o.Capacity)
	}
	if util.CeilDiv(o.Capacity, o.Shards) > math.MaxInt32 {
		return o, invalidOption("per-shard capacity %d overflows slot indices", util.CeilDiv(o.Capacity, o.Shards))
	}

	if o.MaxKeyLen == 0 {
		o.MaxKeyLen = DefaultMaxKeyLen
	}
	if o.MaxValueLen == 0 {
		o.MaxValueLen = DefaultMaxValueLen
	}
	if o.MaxKeyLen < 0 || o.MaxKeyLen > maxBound {
		return o, invalidOption("MaxKeyLen must be in [1, %d], got %d", maxBound, o.MaxKeyLen)
	}
	if o.MaxValueLen < 0 || o.MaxValueLen > maxBound {
		return o, invalidOption("MaxValueLen must be in [1, %d], got %d", maxBound, o.MaxValueLen)
	}

	switch o.Oversize {
	case OversizeReject, OversizeTruncate:
	default:
		return o, invalidOption("unknown OversizePolicy %d", o.Oversize)
	}
	switch o.Recency {
	case RecencyAccess, RecencyWrite:
	default:
		return o, invalidOption("unknown Recency %d", o.Recency)
	}
	switch o.Lock {
	case LockMutex, LockSpin:
	default:
		return o, invalidOption("unknown LockKind %d", o.Lock)
	}
	switch o.Hash {
	case HashFNV1a, HashXXH64:
	default:
		return o, invalidOption("unknown HashKind %d", o.Hash)
	}

	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o, nil
}
