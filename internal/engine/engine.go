// Package engine implements the log-structured key-value storage engine:
// an append-only sequence of segment files per database directory, an
// in-memory index pointing at the most recent command for each key, and
// online compaction that reclaims space from overwritten and removed
// keys without blocking readers.
//
// An Engine value is one handle onto a database directory. Engine.Clone
// produces another handle that shares the index and the writer but keeps
// its own segment file cache, which is what lets many readers operate
// concurrently with the single writer without contending on file handles.
package engine

import (
	stdErrors "errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trdthg/logkv/internal/index"
	"github.com/trdthg/logkv/pkg/options"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Engine coordinates the index, the shared writer, and this handle's
// private reader cache.
type Engine struct {
	dataDir   string
	threshold uint64
	log       *zap.SugaredLogger
	closed    atomic.Bool

	index  *index.Index
	writer *writer
	reader *reader

	// owner is true for the Engine returned directly by Open. Only the
	// owner closes the shared writer on Close; clones only release their
	// own reader cache, since the writer and index are shared.
	owner bool

	// id identifies this handle. Open tags its logger, which the shared
	// writer also uses, with the id of the handle it returns; a clone gets
	// a fresh id but logs through the logger of the handle it was cloned
	// from. It isn't persisted and carries no meaning across restarts.
	id string
}

// Config holds the parameters needed to open an Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open loads or creates a database directory and returns a ready-to-use
// Engine. It replays every existing segment to rebuild the index, then
// opens a new active segment for subsequent writes.
func Open(cfg *Config) (*Engine, error) {
	if cfg == nil || cfg.Options == nil || cfg.Logger == nil {
		return nil, stdErrors.New("engine: configuration is required")
	}

	id := uuid.NewString()
	log := cfg.Logger.With("engineId", id)

	idx := index.New()
	safePoint := &atomic.Uint64{}

	currentGen, uncompacted, err := replay(cfg.Options.DataDir, idx, log)
	if err != nil {
		return nil, err
	}

	rd := newReader(cfg.Options.DataDir, safePoint)
	wr, err := newWriter(cfg.Options.DataDir, currentGen, uncompacted, cfg.Options.CompactionThreshold, idx, safePoint, log)
	if err != nil {
		return nil, err
	}

	log.Infow("engine opened", "dataDir", cfg.Options.DataDir, "currentGen", currentGen, "keys", idx.Len())

	return &Engine{
		dataDir:   cfg.Options.DataDir,
		threshold: cfg.Options.CompactionThreshold,
		log:       log,
		index:     idx,
		writer:    wr,
		reader:    rd,
		owner:     true,
		id:        id,
	}, nil
}

// Clone returns a new Engine handle sharing this one's index and writer
// but with its own private segment file cache, suitable for handing to a
// separate goroutine that only reads.
func (e *Engine) Clone() *Engine {
	return &Engine{
		dataDir:   e.dataDir,
		threshold: e.threshold,
		log:       e.log,
		index:     e.index,
		writer:    e.writer,
		reader:    newReader(e.dataDir, e.writer.safePoint),
		owner:     false,
		id:        uuid.NewString(),
	}
}

// Get returns the value stored for key, or ok=false if the key doesn't
// exist. It resolves the key through the in-memory index and performs a
// single seek-and-decode against the segment the index points at.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	p, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	value, err := e.reader.readValue(key, p)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value for key, appending a record to the active segment and
// updating the index. It may trigger a compaction if the stale-byte count
// accumulated across all segments since the last compaction has crossed
// the configured threshold.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.writer.set(key, value)
}

// Remove deletes key, returning an error if the key doesn't exist.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.writer.remove(key)
}

// Close releases this handle's segment file cache. The owning Engine
// (the one Open returned) additionally flushes and closes the writer and
// the index. Safe to call more than once.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.reader.closeAll()

	if !e.owner {
		return nil
	}

	if err := e.writer.close(); err != nil {
		return err
	}
	return e.index.Close()
}
