package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameAndPath(t *testing.T) {
	require.Equal(t, "42.log", Name(42))
	require.Equal(t, filepath.Join("dir", "42.log"), Path("dir", 42))
}

func TestParseGeneration(t *testing.T) {
	gen, ok := ParseGeneration("7.log")
	require.True(t, ok)
	require.Equal(t, uint64(7), gen)

	gen, ok = ParseGeneration("/some/dir/123.log")
	require.True(t, ok)
	require.Equal(t, uint64(123), gen)

	_, ok = ParseGeneration("not-a-segment.txt")
	require.False(t, ok)

	_, ok = ParseGeneration("engine")
	require.False(t, ok)
}

func TestCreateOpenReadRemove(t *testing.T) {
	dir := t.TempDir()

	f, err := Create(dir, 1)
	require.NoError(t, err)
	_, err = f.WriteString("payload")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rf, err := OpenRead(dir, 1)
	require.NoError(t, err)
	buf := make([]byte, 7)
	n, err := rf.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "payload", string(buf[:n]))
	require.NoError(t, rf.Close())

	require.NoError(t, Remove(dir, 1))
	_, err = os.Stat(Path(dir, 1))
	require.True(t, os.IsNotExist(err))
}

func TestListSortsAndSkipsUnparsableNames(t *testing.T) {
	dir := t.TempDir()

	for _, gen := range []uint64{3, 1, 2} {
		f, err := Create(dir, gen)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine"), []byte("kvs"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.log"), []byte("x"), 0644))

	gens, err := List(dir)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, gens)
}
