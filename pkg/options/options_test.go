package options

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultOptions(t *testing.T) {
	opts := NewDefaultOptions()
	require.Equal(t, DefaultDataDir, opts.DataDir)
	require.Equal(t, DefaultCompactionThreshold, opts.CompactionThreshold)
}

func TestWithDataDirTrimsAndIgnoresBlank(t *testing.T) {
	opts := NewDefaultOptions()
	WithDataDir("  /var/lib/custom  ")(&opts)
	require.Equal(t, "/var/lib/custom", opts.DataDir)

	before := opts.DataDir
	WithDataDir("   ")(&opts)
	require.Equal(t, before, opts.DataDir)
}

func TestWithCompactionThresholdRejectsTooSmallValues(t *testing.T) {
	opts := NewDefaultOptions()

	WithCompactionThreshold(MinCompactionThreshold)(&opts)
	require.Equal(t, MinCompactionThreshold, opts.CompactionThreshold)

	WithCompactionThreshold(MinCompactionThreshold - 1)(&opts)
	require.Equal(t, MinCompactionThreshold, opts.CompactionThreshold, "too-small threshold must be ignored")

	WithCompactionThreshold(2 * 1024 * 1024)(&opts)
	require.Equal(t, uint64(2*1024*1024), opts.CompactionThreshold)
}

func TestWithDefaultOptionsResetsToBaseline(t *testing.T) {
	opts := Options{DataDir: "/tmp/custom", CompactionThreshold: 999_999}
	WithDefaultOptions()(&opts)
	require.Equal(t, DefaultDataDir, opts.DataDir)
	require.Equal(t, DefaultCompactionThreshold, opts.CompactionThreshold)
}
