package engine

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/trdthg/logkv/internal/codec"
	"github.com/trdthg/logkv/internal/index"
	"github.com/trdthg/logkv/pkg/errors"
	"github.com/trdthg/logkv/pkg/posio"
	"github.com/trdthg/logkv/pkg/segment"
)

// writer is the single append point for a database directory. All Engine
// handles cloned from the same Open call share one writer instance and
// serialize through its mutex — there is exactly one active segment at a
// time, and only one goroutine may be appending to it.
type writer struct {
	mu sync.Mutex

	dataDir     string
	threshold   uint64
	currentGen  uint64
	uncompacted uint64

	file       *codec.Writer
	activeFile *os.File

	index     *index.Index
	safePoint *atomic.Uint64
	// reader is this writer's private handle onto the segments, used only
	// during compaction to read back every live record before rewriting it.
	reader *reader

	log *zap.SugaredLogger
}

func newWriter(dataDir string, currentGen, uncompacted, threshold uint64, idx *index.Index, safePoint *atomic.Uint64, log *zap.SugaredLogger) (*writer, error) {
	f, err := segment.Create(dataDir, currentGen)
	if err != nil {
		return nil, errors.ClassifySegmentOpenError(err, currentGen, segment.Path(dataDir, currentGen))
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to end of active segment").
			WithGeneration(currentGen).WithPath(segment.Path(dataDir, currentGen))
	}

	return &writer{
		dataDir:     dataDir,
		threshold:   threshold,
		currentGen:  currentGen,
		uncompacted: uncompacted,
		file:        codec.NewWriter(posio.NewWriter(f, size)),
		activeFile:  f,
		index:       idx,
		safePoint:   safePoint,
		reader:      newReader(dataDir, safePoint),
		log:         log,
	}, nil
}

// set appends a Set record and updates the index, compacting afterward if
// the stale-byte threshold has been crossed.
func (w *writer) set(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cmd := codec.NewSet(key, value)
	start, length, err := w.file.Write(cmd)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record").
			WithGeneration(w.currentGen).WithOffset(start)
	}
	if err := w.file.Flush(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to flush segment").
			WithGeneration(w.currentGen)
	}

	old, hadOld := w.index.Insert(key, index.Pointer{Gen: w.currentGen, Pos: start, Len: length})
	if hadOld {
		w.uncompacted += uint64(old.Len)
	}

	return w.maybeCompact()
}

// remove deletes key after confirming it exists, appending a tombstone
// record and compacting afterward if the stale-byte threshold has been
// crossed.
func (w *writer) remove(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index.Get(key); !ok {
		return errors.NewKeyNotFoundError(key)
	}

	cmd := codec.NewRemove(key)
	start, length, err := w.file.Write(cmd)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append tombstone").
			WithGeneration(w.currentGen).WithOffset(start)
	}
	if err := w.file.Flush(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to flush segment").
			WithGeneration(w.currentGen)
	}

	old, _ := w.index.Remove(key)
	w.uncompacted += uint64(old.Len) + uint64(length)

	return w.maybeCompact()
}

func (w *writer) maybeCompact() error {
	if w.uncompacted <= w.threshold {
		return nil
	}
	return w.compact()
}

// compact rewrites every live record into a fresh generation and deletes
// every generation that's now entirely stale. The active segment isn't
// touched by the rewrite: a new generation is reserved for the compacted
// output, and a second new generation is opened for writes that arrive
// during (and after) the compaction, so the writer never blocks readers
// and never interleaves new writes with the records being rewritten.
func (w *writer) compact() error {
	compactionGen := w.currentGen + 1

	compactionFile, err := segment.Create(w.dataDir, compactionGen)
	if err != nil {
		return errors.ClassifySegmentOpenError(err, compactionGen, segment.Path(w.dataDir, compactionGen))
	}
	compactionWriter := codec.NewWriter(posio.NewWriter(compactionFile, 0))

	w.currentGen += 2
	activeFile, err := segment.Create(w.dataDir, w.currentGen)
	if err != nil {
		return errors.ClassifySegmentOpenError(err, w.currentGen, segment.Path(w.dataDir, w.currentGen))
	}
	previousActive := w.activeFile
	w.file = codec.NewWriter(posio.NewWriter(activeFile, 0))
	w.activeFile = activeFile
	previousActive.Close()

	for key, p := range w.index.Snapshot() {
		cmd, err := w.reader.readCommand(key, p)
		if err != nil {
			return err
		}

		start, length, err := compactionWriter.Write(cmd)
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write compacted record").
				WithGeneration(compactionGen).WithOffset(start)
		}
		w.index.Insert(key, index.Pointer{Gen: compactionGen, Pos: start, Len: length})
	}

	if err := compactionWriter.Flush(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to flush compacted segment").
			WithGeneration(compactionGen)
	}
	compactionFile.Close()

	// Publish the safe point before pruning reader caches and deleting
	// files. Only this writer's own reader is pruned here; every other
	// reader drops its handles below the safe point at the start of its
	// next read, so it may still hold an open handle to a deleted file
	// until then.
	w.safePoint.Store(compactionGen)
	w.reader.closeStaleHandles()

	gens, err := segment.List(w.dataDir)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list segments after compaction").
			WithPath(w.dataDir)
	}

	var delErr error
	for _, gen := range gens {
		if gen >= compactionGen {
			continue
		}
		if err := segment.Remove(w.dataDir, gen); err != nil {
			delErr = multierr.Append(delErr, err)
			w.log.Errorw("failed to delete stale segment", "generation", gen, "error", err)
		}
	}
	if delErr != nil {
		w.log.Errorw("compaction left stale segments behind", "error", delErr)
	}

	w.uncompacted = 0
	return nil
}

// close flushes and closes the active segment.
func (w *writer) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Flush(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to flush active segment").
			WithGeneration(w.currentGen)
	}
	w.activeFile.Close()
	w.reader.closeAll()
	return nil
}
