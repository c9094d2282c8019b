package kvstore

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/IvanBrykalov/shardkv/internal/util"
)

// store routes each key to one shard and delegates.
type store struct {
	shards   []*shard
	hash     func([]byte) uint64
	perShard int
	closed   atomic.Bool

	opt Options
	log *slog.Logger

	rejects util.PaddedAtomicUint64

	// sf coalesces concurrent loads in GetOrLoad.
	sf singleflight.Group
}

// New constructs a Store. All shard storage (bucket tables, node arenas and
// key/value slabs) is allocated here; Put never allocates.
func New(opt Options) (Store, error) {
	opt, err := opt.withDefaults()
	if err != nil {
		return nil, err
	}

	perShard := util.CeilDiv(opt.Capacity, opt.Shards)
	st := &store{
		shards:   make([]*shard, opt.Shards),
		hash:     opt.Hash.fn(),
		perShard: perShard,
		opt:      opt,
		log:      opt.Logger,
	}
	for i := range st.shards {
		st.shards[i] = newShard(i, perShard, opt)
	}

	st.log.Debug("kvstore created",
		"shards", opt.Shards,
		"per_shard_capacity", perShard,
		"max_key_len", opt.MaxKeyLen,
		"max_value_len", opt.MaxValueLen,
		"recency", opt.Recency.String(),
		"lock", opt.Lock.String(),
		"hash", opt.Hash.String(),
	)
	return st, nil
}

// MustNew is New that panics on invalid options.
func MustNew(opt Options) Store {
	s, err := New(opt)
	if err != nil {
		panic(err)
	}
	return s
}

// ---- Store implementation ----

func (st *store) Put(key, value []byte) error {
	if st.closed.Load() {
		return ErrClosed
	}
	if len(key) > st.opt.MaxKeyLen {
		if st.opt.Oversize == OversizeReject {
			return st.reject(RejectKey, len(key), st.opt.MaxKeyLen)
		}
		key = key[:st.opt.MaxKeyLen]
	}
	if len(value) > st.opt.MaxValueLen {
		if st.opt.Oversize == OversizeReject {
			return st.reject(RejectValue, len(value), st.opt.MaxValueLen)
		}
		value = value[:st.opt.MaxValueLen]
	}
	h := st.hash(key)
	st.shardFor(h).put(key, value, h)
	return nil
}

func (st *store) Get(key []byte) ([]byte, bool) {
	v, ok := st.GetInto(nil, key)
	if ok && v == nil {
		v = []byte{}
	}
	return v, ok
}

func (st *store) GetInto(dst, key []byte) ([]byte, bool) {
	key, ok := st.lookupKey(key)
	if !ok {
		return dst, false
	}
	h := st.hash(key)
	return st.shardFor(h).get(dst, key, h)
}

func (st *store) Erase(key []byte) bool {
	key, ok := st.lookupKey(key)
	if !ok {
		return false
	}
	h := st.hash(key)
	return st.shardFor(h).erase(key, h)
}

// Size never holds more than one shard lock at a time.
func (st *store) Size() int {
	total := 0
	for _, s := range st.shards {
		total += s.size()
	}
	return total
}

func (st *store) Capacity() int { return st.perShard * len(st.shards) }

func (st *store) Shards() int { return len(st.shards) }

func (st *store) Stats() Stats {
	out := Stats{
		Rejects:  st.rejects.Load(),
		Capacity: st.Capacity(),
		Shards:   len(st.shards),
	}
	for _, s := range st.shards {
		out.Hits += s.hits.Load()
		out.Misses += s.misses.Load()
		out.Evictions += s.evicts.Load()
		out.Entries += s.size()
	}
	return out
}

func (st *store) GetOrLoad(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := st.Get(key); ok {
		return v, nil
	}
	if st.opt.Loader == nil {
		return nil, ErrNoLoader
	}

	k := bytes.Clone(key)
	ch := st.sf.DoChan(string(k), func() (any, error) {
		// Another flight may have stored the key meanwhile.
		if v, ok := st.Get(k); ok {
			return v, nil
		}
		v, err := st.opt.Loader(ctx, k)
		if err != nil {
			return nil, err
		}
		if err := st.Put(k, v); err != nil {
			return nil, err
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// The result is shared by every waiter of the flight.
		return bytes.Clone(res.Val.([]byte)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (st *store) Close() error {
	if !st.closed.Swap(true) {
		st.log.Debug("kvstore closed", "entries", st.Size())
	}
	return nil
}

// ---- helpers ----

func (st *store) shardFor(hash uint64) *shard {
	return st.shards[util.ShardIndex(hash, len(st.shards))]
}

// lookupKey applies the oversize policy to a read-side key. ok is false when
// the key cannot be resident: the store is closed, or the key is longer than
// the bound under OversizeReject.
func (st *store) lookupKey(key []byte) ([]byte, bool) {
	if st.closed.Load() {
		return nil, false
	}
	if len(key) > st.opt.MaxKeyLen {
		if st.opt.Oversize == OversizeReject {
			return nil, false
		}
		key = key[:st.opt.MaxKeyLen]
	}
	return key, true
}

func (st *store) reject(reason RejectReason, n, limit int) error {
	st.rejects.Add(1)
	st.opt.Metrics.Reject(reason)
	st.log.Debug("put rejected", "reason", reason.String(), "len", n, "max", limit)
	return &BoundError{Reason: reason, Len: n, Max: limit}
}
