// Package segment names and discovers the on-disk log files that make up a
// database directory. Each segment is a single append-only file named
// "<generation>.log", where generation is a strictly increasing uint64
// assigned in the order the segment was created.
package segment

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/trdthg/logkv/pkg/filesys"
)

const extension = ".log"

// Name returns the filename (not the full path) for the given generation.
func Name(gen uint64) string {
	return strconv.FormatUint(gen, 10) + extension
}

// Path returns the full path to the segment file for the given generation
// inside dir.
func Path(dir string, gen uint64) string {
	return filepath.Join(dir, Name(gen))
}

// List returns every segment generation present in dir, sorted ascending.
// Filenames that don't parse as "<uint64>.log" are silently skipped rather
// than treated as an error, since a database directory may accumulate
// unrelated files over its lifetime.
func List(dir string) ([]uint64, error) {
	pattern := filepath.Join(dir, "*"+extension)
	paths, err := filesys.ReadDir(pattern)
	if err != nil {
		return nil, err
	}

	gens := make([]uint64, 0, len(paths))
	for _, path := range paths {
		gen, ok := ParseGeneration(path)
		if !ok {
			continue
		}
		gens = append(gens, gen)
	}

	slices.Sort(gens)
	return gens, nil
}

// ParseGeneration extracts the generation number from a segment path or
// filename. It reports false if the name isn't of the form "<uint64>.log".
func ParseGeneration(path string) (uint64, bool) {
	name := filepath.Base(path)
	trimmed := strings.TrimSuffix(name, extension)
	if trimmed == name {
		return 0, false
	}

	gen, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}

// Create opens a new segment file for generation gen inside dir, creating
// it if it doesn't already exist and positioning it for append writes.
func Create(dir string, gen uint64) (*os.File, error) {
	return os.OpenFile(Path(dir, gen), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
}

// OpenRead opens an existing segment file for generation gen in dir,
// read-only, without disturbing its current append position.
func OpenRead(dir string, gen uint64) (*os.File, error) {
	return os.Open(Path(dir, gen))
}

// Remove deletes the segment file for generation gen inside dir.
func Remove(dir string, gen uint64) error {
	return filesys.DeleteFile(Path(dir, gen))
}
