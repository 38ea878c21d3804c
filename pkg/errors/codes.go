package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes mirror the error kinds named in the storage engine's
// top-level contract: Io, Serde, KeyNotFound, UnexpectedCommandType, WrongEngine.
const (
	// ErrorCodeIO represents any underlying I/O failure: opening, reading,
	// writing, seeking, or deleting a segment file.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeSerde represents a record encode/decode failure in the
	// command codec.
	ErrorCodeSerde ErrorCode = "SERDE_ERROR"

	// ErrorCodeInvalidInput represents a caller-supplied value that doesn't
	// meet the engine's requirements (for example an empty directory). A
	// mismatched engine tag uses ErrorCodeWrongEngine instead.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected failures that don't fit into
	// a more specific category.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes describe failure modes of the segment
// directory and the positioned I/O wrappers.
const (
	// ErrorCodeSegmentCorrupted indicates a decode failure mid-segment with
	// well-formed data following it — not tolerated the way trailing
	// truncation is.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodePermissionDenied indicates insufficient permissions to
	// access a segment file or the database directory.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates the storage device ran out of space
	// while appending or compacting.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates the filesystem is mounted
	// read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Index-specific error codes.
const (
	// ErrorCodeKeyNotFound indicates remove() was called on a key absent
	// from the index.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrorCodeUnexpectedCommandType indicates an indexed position decoded
	// to something other than Set — an internal consistency violation.
	ErrorCodeUnexpectedCommandType ErrorCode = "UNEXPECTED_COMMAND_TYPE"
)

// Engine-selection error code.
const (
	// ErrorCodeWrongEngine indicates the directory's `engine` sentinel file
	// names an engine other than "kvs".
	ErrorCodeWrongEngine ErrorCode = "WRONG_ENGINE"
)
