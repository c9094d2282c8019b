package kvstore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOptions is wrapped by every error New returns for bad Options.
	ErrInvalidOptions = errors.New("kvstore: invalid options")
	// ErrClosed is returned by writes issued after Close.
	ErrClosed = errors.New("kvstore: store closed")
	// ErrNoLoader is returned by GetOrLoad when Options.Loader is nil.
	ErrNoLoader = errors.New("kvstore: no Loader provided")
	// ErrKeyTooLong is the sentinel behind a BoundError for keys.
	ErrKeyTooLong = errors.New("kvstore: key too long")
	// ErrValueTooLong is the sentinel behind a BoundError for values.
	ErrValueTooLong = errors.New("kvstore: value too long")
)

// BoundError reports a key or value longer than the configured bound.
// It is returned by Put under OversizeReject.
//
// errors.Is matches it against ErrKeyTooLong or ErrValueTooLong.
type BoundError struct {
	Reason RejectReason
	Len    int
	Max    int
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("kvstore: %s length %d exceeds bound %d", e.Reason, e.Len, e.Max)
}

func (e *BoundError) Unwrap() error {
	if e.Reason == RejectKey {
		return ErrKeyTooLong
	}
	return ErrValueTooLong
}

// InvariantError describes a detected desynchronisation between a shard's
// bucket table, LRU list and arena. The store does not try to recover from
// it: the shard panics with an *InvariantError after logging it.
type InvariantError struct {
	Shard  int
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("kvstore: invariant violated in shard %d during %s: %s", e.Shard, e.Op, e.Detail)
}

func invalidOption(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
