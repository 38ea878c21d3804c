package options

const (
	// DefaultDataDir is the base directory used when the caller doesn't
	// supply one explicitly.
	DefaultDataDir = "/var/lib/logkv"

	// DefaultCompactionThreshold mirrors the original engine's constant:
	// once the uncompacted byte count across all segments crosses this
	// threshold, a write triggers compaction.
	DefaultCompactionThreshold uint64 = 1024 * 1024

	// MinCompactionThreshold guards against pathologically small
	// thresholds that would make every write trigger a compaction.
	MinCompactionThreshold uint64 = 4096
)

// defaultOptions holds the baseline configuration for a database.
var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	CompactionThreshold: DefaultCompactionThreshold,
}

// NewDefaultOptions returns a copy of the baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
