package spin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var _ sync.Locker = (*Lock)(nil)

func TestLock_MutualExclusion(t *testing.T) {
	var (
		l       Lock
		counter int
		g       errgroup.Group
	)
	const workers, iters = 8, 10_000
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < iters; i++ {
				l.Lock()
				counter++
				l.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, workers*iters, counter)
}

func TestLock_TryLock(t *testing.T) {
	t.Parallel()

	var l Lock
	require.True(t, l.TryLock())
	require.False(t, l.TryLock())
	l.Unlock()
	require.True(t, l.TryLock())
	l.Unlock()
}

func TestLock_UnlockUnlockedPanics(t *testing.T) {
	t.Parallel()

	var l Lock
	require.Panics(t, func() { l.Unlock() })
}
