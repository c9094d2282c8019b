package util

import "runtime"

// ReasonableShardCount picks a practical default shard count based on CPU
// parallelism. Heuristic: nextPow2(2*GOMAXPROCS), clamped to [1..256].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > 256 {
		n = 256
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard index (hash mod shards).
// Power-of-two shard counts take the mask path, which gives the same result.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

// CeilDiv returns ceil(a/b) for positive b.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}
