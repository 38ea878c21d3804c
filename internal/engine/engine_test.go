package engine

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trdthg/logkv/pkg/errors"
	"github.com/trdthg/logkv/pkg/options"
	"github.com/trdthg/logkv/pkg/segment"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zap.NewNop().Sugar()
}

func openEngine(t *testing.T, threshold uint64) *Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	if threshold > 0 {
		opts.CompactionThreshold = threshold
	}
	eng, err := Open(&Config{Options: &opts, Logger: testLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestGetOnEmptyEngineReturnsNotFound(t *testing.T) {
	eng := openEngine(t, 0)

	_, ok, err := eng.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetThenGet(t *testing.T) {
	eng := openEngine(t, 0)

	require.NoError(t, eng.Set("k", "v1"))
	v, ok, err := eng.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", v)
}

func TestOverwriteSameKeyReturnsLatestValue(t *testing.T) {
	eng := openEngine(t, 0)

	require.NoError(t, eng.Set("k", "v1"))
	require.NoError(t, eng.Set("k", "v2"))
	require.NoError(t, eng.Set("k", "v3"))

	v, ok, err := eng.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v3", v)
}

func TestRemoveDeletesKey(t *testing.T) {
	eng := openEngine(t, 0)

	require.NoError(t, eng.Set("k", "v"))
	require.NoError(t, eng.Remove("k"))

	_, ok, err := eng.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveUnknownKeyErrorsKeyNotFound(t *testing.T) {
	eng := openEngine(t, 0)

	err := eng.Remove("never-set")
	require.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestRemoveAlreadyRemovedKeyErrors(t *testing.T) {
	eng := openEngine(t, 0)

	require.NoError(t, eng.Set("k", "v"))
	require.NoError(t, eng.Remove("k"))

	err := eng.Remove("k")
	require.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestDataSurvivesCloseAndReopen(t *testing.T) {
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	eng, err := Open(&Config{Options: &opts, Logger: testLogger(t)})
	require.NoError(t, err)

	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("b", "2"))
	require.NoError(t, eng.Remove("a"))
	require.NoError(t, eng.Close())

	reopened, err := Open(&Config{Options: &opts, Logger: testLogger(t)})
	require.NoError(t, err)
	defer reopened.Close()

	_, ok, err := reopened.Get("a")
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err := reopened.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", v)
}

// TestReplayToleratesTruncatedTrailingRecord simulates a crash right after
// an append partially landed on disk: the active segment's last record is
// cut off mid-value. Reopening the engine must recover every record
// before the truncated one rather than failing Open outright.
func TestReplayToleratesTruncatedTrailingRecord(t *testing.T) {
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	eng, err := Open(&Config{Options: &opts, Logger: testLogger(t)})
	require.NoError(t, err)

	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("b", "2"))
	require.NoError(t, eng.Close())

	gens, err := segment.List(opts.DataDir)
	require.NoError(t, err)
	require.NotEmpty(t, gens)
	activePath := segment.Path(opts.DataDir, gens[len(gens)-1])

	f, err := os.OpenFile(activePath, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"type":"set","key":"c","value":"unfinishe`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := Open(&Config{Options: &opts, Logger: testLogger(t)})
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	v, ok, err = reopened.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", v)

	_, ok, err = reopened.Get("c")
	require.NoError(t, err)
	require.False(t, ok, "truncated record must not appear in the index")
}

func TestForcedCompactionReducesSegmentCountAndPreservesData(t *testing.T) {
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.CompactionThreshold = 4096

	eng, err := Open(&Config{Options: &opts, Logger: testLogger(t)})
	require.NoError(t, err)
	defer eng.Close()

	const n = 10_000
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i%50)
		require.NoError(t, eng.Set(key, fmt.Sprintf("value-%d", i)))
	}

	gens, err := segment.List(opts.DataDir)
	require.NoError(t, err)
	require.Less(t, len(gens), n, "compaction should have pruned most stale segments/records")

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		_, ok, err := eng.Get(key)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestCloneSharesWriterAndIndexButNotReaderCache(t *testing.T) {
	eng := openEngine(t, 0)

	require.NoError(t, eng.Set("k", "v"))

	clone := eng.Clone()
	defer clone.Close()
	require.NotSame(t, eng.reader, clone.reader)

	v, ok, err := clone.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)

	require.NoError(t, clone.Set("k2", "v2"))
	v, ok, err = eng.Get("k2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)
}

func TestConcurrentCloneReadersWhileWriterAppends(t *testing.T) {
	eng := openEngine(t, 0)

	for i := 0; i < 100; i++ {
		require.NoError(t, eng.Set(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i)))
	}

	done := make(chan error, 10)
	for r := 0; r < 10; r++ {
		clone := eng.Clone()
		go func(c *Engine) {
			defer c.Close()
			for i := 0; i < 100; i++ {
				_, _, err := c.Get(fmt.Sprintf("key-%d", i))
				if err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}(clone)
	}

	writerDone := make(chan error, 1)
	go func() {
		for i := 100; i < 200; i++ {
			if err := eng.Set(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i)); err != nil {
				writerDone <- err
				return
			}
		}
		writerDone <- nil
	}()

	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}
	require.NoError(t, <-writerDone)
}

func TestCloseIsIdempotentAndClonesCloseIndependently(t *testing.T) {
	eng := openEngine(t, 0)
	clone := eng.Clone()

	require.NoError(t, clone.Close())
	err := clone.Close()
	require.ErrorIs(t, err, ErrEngineClosed)

	_, _, err = eng.Get("still-open")
	require.NoError(t, err)
}
