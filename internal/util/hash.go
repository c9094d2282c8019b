// Package util contains internal helpers (hashing, sharding, padding).
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "github.com/cespare/xxhash/v2"

// FNV-1a 64-bit parameters.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// Fnv64a hashes b with 64-bit FNV-1a. It never allocates.
// The same value routes a key to its shard and to its home bucket.
func Fnv64a(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// XXH64 hashes b with xxHash64 (seed 0).
// Faster than FNV-1a on keys longer than a few bytes.
func XXH64(b []byte) uint64 { return xxhash.Sum64(b) }
