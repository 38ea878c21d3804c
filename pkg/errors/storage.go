package errors

// StorageError is a specialized error type for segment I/O and codec
// failures. It embeds baseError to inherit chaining, codes, and details,
// and adds fields that pinpoint exactly where on disk the failure occurred.
type StorageError struct {
	*baseError
	generation uint64 // Which segment generation was being accessed.
	offset     int64  // Byte offset within the segment where the problem happened.
	path       string // Path of the segment file that caused the issue.
}

// NewStorageError creates a new storage-specific error.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg)}
}

// WithGeneration records the segment generation involved in the error.
func (se *StorageError) WithGeneration(gen uint64) *StorageError {
	se.generation = gen
	return se
}

// WithOffset records the byte position where the error occurred.
func (se *StorageError) WithOffset(offset int64) *StorageError {
	se.offset = offset
	return se
}

// WithPath captures which segment path was being processed.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// WithDetail adds contextual information while preserving the StorageError type.
func (se *StorageError) WithDetail(key string, value any) *StorageError {
	se.baseError.WithDetail(key, value)
	return se
}

// Generation returns the segment generation involved in the error.
func (se *StorageError) Generation() uint64 {
	return se.generation
}

// Offset returns the byte offset within the segment where the error happened.
func (se *StorageError) Offset() int64 {
	return se.offset
}

// Path returns the segment path that was being processed.
func (se *StorageError) Path() string {
	return se.path
}
