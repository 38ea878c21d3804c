// Package logkv is the public entry point for the storage engine: Open a
// database directory and get back a handle with Get, Set, Remove, Clone,
// and Close.
package logkv

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/trdthg/logkv/internal/engine"
	"github.com/trdthg/logkv/pkg/errors"
	"github.com/trdthg/logkv/pkg/filesys"
	"github.com/trdthg/logkv/pkg/options"
)

// engineName is the tag this package writes into a database directory's
// sentinel file. Opening a directory tagged with any other name fails
// with a WrongEngine error rather than silently misreading its segments.
const engineName = "kvs"

const sentinelFile = "engine"

// Sentinel errors let callers use errors.Is against the result of Get, Set,
// Remove, and Open without reaching into the structured error types in
// pkg/errors.
var (
	ErrKeyNotFound           = errors.ErrKeyNotFound
	ErrUnexpectedCommandType = errors.ErrUnexpectedCommandType
	ErrWrongEngine           = errors.ErrWrongEngine
)

// DB is a handle onto a database directory. A DB returned by Open owns
// the writer; handles returned by Clone share it. Every handle is safe
// for concurrent use by multiple goroutines.
type DB struct {
	eng *engine.Engine
}

// Open loads the database directory at path, creating it if it doesn't
// exist, and returns a ready-to-use handle. If the directory already
// exists and was created by a different engine, Open returns a
// ValidationError with code ErrorCodeWrongEngine instead of attempting to
// read its segments.
func Open(path string, opts ...options.OptionFunc) (*DB, error) {
	cfg := options.NewDefaultOptions()
	cfg.DataDir = path
	for _, opt := range opts {
		opt(&cfg)
	}

	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	if err := checkEngine(cfg.DataDir); err != nil {
		return nil, err
	}

	eng, err := engine.Open(&engine.Config{Options: &cfg, Logger: log})
	if err != nil {
		return nil, err
	}

	return &DB{eng: eng}, nil
}

// checkEngine verifies that dataDir either doesn't have a sentinel file
// yet (a fresh directory) or was tagged with this engine's name, writing
// the sentinel if it's missing.
func checkEngine(dataDir string) error {
	if err := filesys.CreateDir(dataDir, 0755, true); err != nil {
		return errors.ClassifyDirectoryCreationError(err, dataDir)
	}

	path := filepath.Join(dataDir, sentinelFile)
	exists, err := filesys.Exists(path)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat engine sentinel file").WithPath(path)
	}

	if !exists {
		return filesys.WriteEngineTag(path, engineName)
	}

	tag, err := filesys.ReadEngineTag(path)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read engine sentinel file").WithPath(path)
	}

	tag = strings.TrimSpace(tag)
	if tag != engineName {
		return errors.NewWrongEngineError(tag, engineName)
	}
	return nil
}

// Get returns the value stored for key, or ok=false if it doesn't exist.
func (db *DB) Get(key string) (string, bool, error) {
	return db.eng.Get(key)
}

// Set stores value for key, overwriting any existing value.
func (db *DB) Set(key, value string) error {
	return db.eng.Set(key, value)
}

// Remove deletes key, returning an error if it doesn't exist.
func (db *DB) Remove(key string) error {
	return db.eng.Remove(key)
}

// Clone returns a new handle onto the same database, sharing the index
// and the writer but with its own private segment file cache. Safe to
// hand to a separate goroutine that reads concurrently with the writer.
func (db *DB) Clone() *DB {
	return &DB{eng: db.eng.Clone()}
}

// Close releases this handle's resources.
func (db *DB) Close() error {
	return db.eng.Close()
}

func newLogger() (*zap.SugaredLogger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
