package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/shardkv/kvstore"
)

func testConfig() config {
	return config{
		capacity: 256,
		shards:   4,
		lock:     "mutex",
		recency:  "access",
		hash:     "fnv1a",
		workers:  4,
		duration: 50 * time.Millisecond,
		readPct:  80,
		keys:     1000,
		zipfS:    1.1,
		zipfV:    1,
		seed:     1,
		valueLen: 16,
	}
}

func TestStoreOptions(t *testing.T) {
	t.Parallel()

	c := testConfig()
	c.lock, c.recency, c.hash = "spin", "write", "xxh64"
	opt, err := storeOptions(c)
	require.NoError(t, err)
	assert.Equal(t, kvstore.LockSpin, opt.Lock)
	assert.Equal(t, kvstore.RecencyWrite, opt.Recency)
	assert.Equal(t, kvstore.HashXXH64, opt.Hash)
	assert.Equal(t, kvstore.DefaultMaxValueLen, opt.MaxValueLen)

	for _, bad := range []func(*config){
		func(c *config) { c.lock = "futex" },
		func(c *config) { c.recency = "lfu" },
		func(c *config) { c.hash = "md5" },
	} {
		c := testConfig()
		bad(&c)
		_, err := storeOptions(c)
		assert.Error(t, err)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	_, err := newLogger("json", "debug")
	require.NoError(t, err)
	_, err = newLogger("xml", "info")
	require.Error(t, err)
	_, err = newLogger("text", "loud")
	require.Error(t, err)
}

func TestRun_Short(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	require.NoError(t, run(testConfig(), log))

	c := testConfig()
	c.lock = "spin"
	c.opsLimit = 2000
	require.NoError(t, run(c, log))

	c = testConfig()
	c.readPct = 101
	require.Error(t, run(c, log))
}

func TestWorker_Counts(t *testing.T) {
	st := kvstore.MustNew(kvstore.Options{Capacity: 64, Shards: 2})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var cnt counters
	c := testConfig()
	require.NoError(t, worker(ctx, st, &cnt, rate.NewLimiter(rate.Inf, 1), c, 0, []byte("v")))

	assert.Positive(t, cnt.total.Load())
	assert.Equal(t, cnt.total.Load(), cnt.reads.Load()+cnt.writes.Load())
	assert.Equal(t, cnt.reads.Load(), cnt.hits.Load()+cnt.misses.Load())
}
