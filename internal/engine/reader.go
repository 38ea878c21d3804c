package engine

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/trdthg/logkv/internal/codec"
	"github.com/trdthg/logkv/internal/index"
	"github.com/trdthg/logkv/pkg/errors"
	"github.com/trdthg/logkv/pkg/posio"
	"github.com/trdthg/logkv/pkg/segment"
)

// reader resolves index pointers into values by seeking into segment
// files. Each Engine handle owns its own reader, with its own lazily
// populated, unshared cache of positioned file handles — that's what lets
// concurrent readers avoid contending with each other or with the
// writer for file access.
type reader struct {
	dataDir   string
	safePoint *atomic.Uint64

	mu      sync.Mutex
	handles map[uint64]*posio.Reader
}

func newReader(dataDir string, safePoint *atomic.Uint64) *reader {
	return &reader{dataDir: dataDir, safePoint: safePoint, handles: make(map[uint64]*posio.Reader)}
}

// readValue seeks to the record p points at and decodes it, returning its
// value. It returns an IndexError if the record doesn't decode to a Set
// command — an internal consistency violation, since the index should
// only ever point at Set records.
func (r *reader) readValue(key string, p index.Pointer) (string, error) {
	cmd, err := r.readCommand(key, p)
	if err != nil {
		return "", err
	}
	return cmd.Value, nil
}

// readCommand seeks to the record p points at and decodes the full
// command. Compaction uses this directly, since it needs the command to
// re-encode rather than just the value.
func (r *reader) readCommand(key string, p index.Pointer) (codec.Command, error) {
	r.closeStaleHandles()

	pr, err := r.handle(p.Gen)
	if err != nil {
		return codec.Command{}, err
	}

	if _, err := pr.Seek(p.Pos, io.SeekStart); err != nil {
		return codec.Command{}, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek segment").
			WithGeneration(p.Gen).WithOffset(p.Pos).WithPath(segment.Path(r.dataDir, p.Gen))
	}

	cmd, err := codec.ReadAt(io.LimitReader(pr, p.Len))
	if err != nil {
		return codec.Command{}, errors.ClassifyCodecError(err, p.Gen, p.Pos, true)
	}

	if cmd.Type != codec.Set {
		return codec.Command{}, errors.NewUnexpectedCommandTypeError(key, p.Gen)
	}
	return cmd, nil
}

// handle returns the positioned reader for generation gen, opening and
// caching it on first use.
func (r *reader) handle(gen uint64) (*posio.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pr, ok := r.handles[gen]; ok {
		return pr, nil
	}

	f, err := segment.OpenRead(r.dataDir, gen)
	if err != nil {
		return nil, errors.ClassifySegmentOpenError(err, gen, segment.Path(r.dataDir, gen))
	}
	pr := posio.NewReader(f, 0)
	r.handles[gen] = pr
	return pr, nil
}

// closeStaleHandles drops any cached handle for a generation compaction
// has already deleted from disk. It's called before every read so a
// reader that's been idle through a compaction doesn't try to use a
// handle to a file that no longer exists.
func (r *reader) closeStaleHandles() {
	safe := r.safePoint.Load()

	r.mu.Lock()
	defer r.mu.Unlock()

	for gen, pr := range r.handles {
		if gen < safe {
			pr.Close()
			delete(r.handles, gen)
		}
	}
}

// closeAll closes every cached handle, releasing this reader's file
// descriptors.
func (r *reader) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for gen, pr := range r.handles {
		pr.Close()
		delete(r.handles, gen)
	}
}
