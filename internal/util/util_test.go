package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference vectors for 64-bit FNV-1a.
func TestFnv64a_KnownVectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want uint64
	}{
		{"", 0xcbf29ce484222325},
		{"a", 0xaf63dc4c8601ec8c},
		{"foobar", 0x85944171f73967e8},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, Fnv64a([]byte(tc.in)), "Fnv64a(%q)", tc.in)
	}
}

func TestFnv64a_NoAllocs(t *testing.T) {
	b := []byte("key_12345")
	allocs := testing.AllocsPerRun(100, func() { _ = Fnv64a(b) })
	require.Zero(t, allocs)
}

func TestXXH64_Deterministic(t *testing.T) {
	t.Parallel()

	// xxHash64 of the empty input with seed 0.
	assert.Equal(t, uint64(0xef46db3751d8e999), XXH64(nil))
	assert.Equal(t, XXH64([]byte("k")), XXH64([]byte("k")))
	assert.NotEqual(t, XXH64([]byte("k1")), XXH64([]byte("k2")))
}

func TestShardIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ShardIndex(12345, 0))
	assert.Equal(t, 0, ShardIndex(12345, 1))
	for _, n := range []int{2, 3, 7, 8, 64, 100} {
		for _, h := range []uint64{0, 1, 99, 1 << 40, ^uint64(0)} {
			assert.Equalf(t, int(h%uint64(n)), ShardIndex(h, n), "hash=%d shards=%d", h, n)
		}
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{
		0:             1,
		1:             1,
		2:             2,
		3:             4,
		8:             8,
		9:             16,
		1000:          1024,
		1<<63 + 1:     1 << 63,
		^uint64(0):    1 << 63,
		(1 << 62) + 1: 1 << 63,
	}
	for in, want := range cases {
		assert.Equalf(t, want, NextPow2(in), "NextPow2(%d)", in)
	}
	assert.True(t, IsPowerOfTwo(64))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(96))
}

func TestReasonableShardCount(t *testing.T) {
	n := ReasonableShardCount()
	require.GreaterOrEqual(t, n, 1)
	require.LessOrEqual(t, n, 256)
	require.True(t, IsPowerOfTwo(uint64(n)))
}

func TestCeilDiv(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 128, CeilDiv(1024, 8))
	assert.Equal(t, 129, CeilDiv(1025, 8))
	assert.Equal(t, 1, CeilDiv(1, 8))
}
