package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertGetRemove(t *testing.T) {
	idx := New()

	_, ok := idx.Get("missing")
	require.False(t, ok)

	old, hadOld := idx.Insert("k", Pointer{Gen: 1, Pos: 0, Len: 10})
	require.False(t, hadOld)
	require.Zero(t, old)

	p, ok := idx.Get("k")
	require.True(t, ok)
	require.Equal(t, Pointer{Gen: 1, Pos: 0, Len: 10}, p)

	old, hadOld = idx.Insert("k", Pointer{Gen: 2, Pos: 5, Len: 20})
	require.True(t, hadOld)
	require.Equal(t, Pointer{Gen: 1, Pos: 0, Len: 10}, old)

	require.Equal(t, 1, idx.Len())

	old, hadOld = idx.Remove("k")
	require.True(t, hadOld)
	require.Equal(t, Pointer{Gen: 2, Pos: 5, Len: 20}, old)
	require.Equal(t, 0, idx.Len())

	_, hadOld = idx.Remove("k")
	require.False(t, hadOld)
}

func TestSnapshotIsACopy(t *testing.T) {
	idx := New()
	idx.Insert("a", Pointer{Gen: 1, Pos: 0, Len: 1})
	idx.Insert("b", Pointer{Gen: 1, Pos: 1, Len: 1})

	snap := idx.Snapshot()
	require.Len(t, snap, 2)

	idx.Insert("c", Pointer{Gen: 1, Pos: 2, Len: 1})
	require.Len(t, snap, 2, "snapshot must not observe later mutations")
}

func TestCloseIsIdempotentAndClearsTable(t *testing.T) {
	idx := New()
	idx.Insert("a", Pointer{Gen: 1, Pos: 0, Len: 1})

	require.NoError(t, idx.Close())
	require.Equal(t, 0, idx.Len())

	err := idx.Close()
	require.ErrorIs(t, err, ErrIndexClosed)
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	idx := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			idx.Insert(key, Pointer{Gen: uint64(i), Pos: int64(i), Len: 1})
			idx.Get(key)
			idx.Snapshot()
		}(i)
	}
	wg.Wait()

	require.LessOrEqual(t, idx.Len(), 26)
}
