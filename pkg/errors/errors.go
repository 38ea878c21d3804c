// Package errors gives the storage engine a layered error model instead of
// bare fmt.Errorf strings. A failure in the write path, the index, or input
// validation carries different diagnostic context, so each gets its own
// error type built on a shared baseError: chaining via Unwrap, an ErrorCode
// for programmatic dispatch, and a details map for structured logging.
//
// Callers that only care whether something went wrong can keep treating
// these as plain errors. Callers that want to react differently — retry an
// I/O error, surface a validation message, trigger a compaction after an
// index inconsistency — use errors.Is/As or the As*Error helpers below to
// recover the specific type and its context.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsValidationError checks if the given error is a ValidationError or contains one in its error chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsStorageError determines if an error is related to storage operations, such as file I/O,
// disk space issues, or segment file corruption.
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// IsIndexError identifies errors that occurred during index operations such as key lookups,
// key removal, or record pointer resolution.
func IsIndexError(err error) bool {
	var ie *IndexError
	return stdErrors.As(err, &ie)
}

// AsValidationError safely extracts a ValidationError from an error chain, providing access
// to which field failed, what rule was violated, and what value was provided versus expected.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStorageError extracts StorageError context from an error chain: the segment generation,
// byte offset, and path involved in the failure.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsIndexError extracts IndexError context from an error chain: the key and, where known,
// the segment generation involved in the failure.
func AsIndexError(err error) (*IndexError, bool) {
	var ie *IndexError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or returns
// ErrorCodeInternal for errors that don't carry one.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	if ie, ok := AsIndexError(err); ok {
		return ie.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports them,
// returning an empty map for errors without details.
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok {
		if details := ve.Details(); details != nil {
			return details
		}
	}
	if se, ok := AsStorageError(err); ok {
		if details := se.Details(); details != nil {
			return details
		}
	}
	if ie, ok := AsIndexError(err); ok {
		if details := ie.Details(); details != nil {
			return details
		}
	}
	return make(map[string]any)
}

// ClassifyDirectoryCreationError inspects a directory-creation failure and
// returns a StorageError with the code that best matches the underlying
// system error, so callers can tell a permissions problem from a full disk.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create database directory",
		).WithPath(path).WithDetail("operation", "mkdir")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create database directory",
				).WithPath(path).WithDetail("operation", "mkdir")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create directory on read-only filesystem",
				).WithPath(path).WithDetail("operation", "mkdir")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to create database directory").
		WithPath(path).WithDetail("operation", "mkdir")
}

// ClassifySegmentOpenError inspects a segment-file open failure and returns
// a StorageError carrying the generation and path involved.
func ClassifySegmentOpenError(err error, gen uint64, path string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open segment file",
		).WithGeneration(gen).WithPath(path).WithDetail("operation", "open_segment")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create segment file",
				).WithGeneration(gen).WithPath(path).WithDetail("operation", "open_segment")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create segment file on read-only filesystem",
				).WithGeneration(gen).WithPath(path).WithDetail("operation", "open_segment")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to open segment file").
		WithGeneration(gen).WithPath(path).WithDetail("operation", "open_segment")
}

// ClassifyCodecError wraps a record encode/decode failure as a StorageError
// pinned to the generation and offset where it happened. A decode failure
// mid-segment (rather than at EOF, which signals a clean truncated tail)
// is reported as SEGMENT_CORRUPTED.
func ClassifyCodecError(err error, gen uint64, offset int64, corrupted bool) error {
	code := ErrorCodeSerde
	msg := "failed to decode command record"
	if corrupted {
		code = ErrorCodeSegmentCorrupted
		msg = "segment contains a malformed command record"
	}
	return NewStorageError(err, code, msg).
		WithGeneration(gen).
		WithOffset(offset).
		WithDetail("operation", "decode_command")
}
