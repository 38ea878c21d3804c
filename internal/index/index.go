// Package index provides the in-memory hash table that maps every live
// key to the location of its most recent command on disk. This is the
// core Bitcask trick: keep all keys in memory with compact pointers while
// values live in segment files, so lookups resolve in O(1) without
// scanning anything.
package index

import (
	stdErrors "errors"
	"sync"
	"sync/atomic"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// Pointer locates a single record inside a segment file: which
// generation, where it starts, and how many bytes it occupies.
type Pointer struct {
	Gen uint64
	Pos int64
	Len int64
}

// Index is a concurrency-safe key -> Pointer map. Reads take a read lock
// and are expected to vastly outnumber writes, which take the exclusive
// lock.
type Index struct {
	mu     sync.RWMutex
	table  map[string]Pointer
	closed atomic.Bool
}

// New creates an empty index, ready for concurrent use.
func New() *Index {
	return &Index{table: make(map[string]Pointer, 2046)}
}

// Get resolves key to its current Pointer. The bool return is false if
// the key isn't present.
func (idx *Index) Get(key string) (Pointer, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	p, ok := idx.table[key]
	return p, ok
}

// Insert records or overwrites key's Pointer, returning the Pointer it
// replaced, if any. The write path uses the replaced Pointer's Len to
// grow the stale-byte count that triggers compaction.
func (idx *Index) Insert(key string, p Pointer) (old Pointer, hadOld bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	old, hadOld = idx.table[key]
	idx.table[key] = p
	return old, hadOld
}

// Remove deletes key from the index, returning the Pointer it held and
// whether it was present.
func (idx *Index) Remove(key string) (old Pointer, hadOld bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	old, hadOld = idx.table[key]
	delete(idx.table, key)
	return old, hadOld
}

// Len returns the number of live keys in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.table)
}

// Snapshot returns a copy of every key -> Pointer pair currently in the
// index. Compaction walks a snapshot rather than the live map so it never
// holds the index lock for the duration of rewriting every record.
func (idx *Index) Snapshot() map[string]Pointer {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[string]Pointer, len(idx.table))
	for k, v := range idx.table {
		out[k] = v
	}
	return out
}

// Close marks the index closed and releases the underlying map. Safe to
// call more than once.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	clear(idx.table)
	idx.table = nil
	return nil
}
