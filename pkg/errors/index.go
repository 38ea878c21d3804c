package errors

import stdErrors "errors"

// Sentinel values let callers use errors.Is without reaching into the
// structured IndexError type.
var (
	ErrKeyNotFound           = stdErrors.New("key not found")
	ErrUnexpectedCommandType = stdErrors.New("unexpected command type")
)

// IndexError is a specialized error type for the in-memory key index: a
// missing key on remove(), or a record pointer that decodes to something
// other than a Set command. It embeds baseError to inherit chaining,
// codes, and details, and adds fields that identify which key and which
// generation were involved.
type IndexError struct {
	*baseError

	// key identifies which key was being looked up, inserted, or removed
	// when the error occurred.
	key string

	// generation identifies which segment generation the offending record
	// pointer referred to, when known.
	generation uint64
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithKey records which key was being processed when the error occurred.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithGeneration records which segment generation the offending record
// pointer referred to.
func (ie *IndexError) WithGeneration(gen uint64) *IndexError {
	ie.generation = gen
	return ie
}

// Key returns the key that was being processed when the error occurred.
func (ie *IndexError) Key() string {
	return ie.key
}

// Generation returns the segment generation associated with the error.
func (ie *IndexError) Generation() uint64 {
	return ie.generation
}

// Is reports whether target is the sentinel matching this error's code, so
// errors.Is(err, ErrKeyNotFound) works without type-asserting to IndexError.
func (ie *IndexError) Is(target error) bool {
	switch ie.code {
	case ErrorCodeKeyNotFound:
		return target == ErrKeyNotFound
	case ErrorCodeUnexpectedCommandType:
		return target == ErrUnexpectedCommandType
	}
	return false
}

// NewKeyNotFoundError builds the error returned by remove() for a key that
// isn't present in the index.
func NewKeyNotFoundError(key string) *IndexError {
	return NewIndexError(nil, ErrorCodeKeyNotFound, "key not found").
		WithKey(key)
}

// NewUnexpectedCommandTypeError builds the error raised when a record
// pointer resolved from the index decodes to a command other than Set —
// an internal consistency violation rather than a caller mistake.
func NewUnexpectedCommandTypeError(key string, gen uint64) *IndexError {
	return NewIndexError(nil, ErrorCodeUnexpectedCommandType, "unexpected command type").
		WithKey(key).
		WithGeneration(gen)
}
