package kvstore

// RejectReason tells which bound a rejected Put exceeded.
type RejectReason int

const (
	// RejectKey: the key was longer than MaxKeyLen.
	RejectKey RejectReason = iota
	// RejectValue: the value was longer than MaxValueLen.
	RejectValue
)

func (r RejectReason) String() string {
	if r == RejectKey {
		return "key"
	}
	return "value"
}

// Metrics exposes store-level observability hooks.
// Implementations must be safe for concurrent use; Hit, Miss, Evict and
// Entries are called under a shard lock, so keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	Reject(reason RejectReason)
	// Entries reports a change in the number of resident entries.
	Entries(delta int)
}

// NoopMetrics is the default Metrics implementation. It does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                {}
func (NoopMetrics) Miss()               {}
func (NoopMetrics) Evict()              {}
func (NoopMetrics) Reject(RejectReason) {}
func (NoopMetrics) Entries(int)         {}

var _ Metrics = NoopMetrics{}

// Stats is a point-in-time summary of store activity.
// Counters are cumulative since New. Like Size, the values are gathered one
// shard at a time and are not a consistent snapshot under concurrent writes.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Rejects   uint64

	Entries  int
	Capacity int
	Shards   int
}

// HitRate returns Hits/(Hits+Misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
