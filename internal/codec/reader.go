package codec

import (
	"encoding/json"
	"io"
)

// Reader decodes a stream of JSON-encoded commands, tracking the byte
// offset of each record as it goes. It wraps any io.Reader positioned at
// the start of a record; callers that need random access seek the
// underlying file first and construct a fresh Reader there.
type Reader struct {
	dec    *json.Decoder
	base   int64 // absolute offset the underlying reader started at.
	cursor int64 // offset of the record about to be decoded.
}

// NewReader wraps r for command decoding. base is the absolute file offset
// that r's first byte corresponds to, so that InputOffset-derived record
// lengths can be translated back into absolute segment positions.
func NewReader(r io.Reader, base int64) *Reader {
	return &Reader{dec: json.NewDecoder(r), base: base, cursor: base}
}

// Next decodes the next command, returning its absolute start offset and
// its encoded length in bytes. It returns io.EOF once the stream is
// exhausted with no partial record pending.
//
// A segment can end mid-record if the process crashed or was killed while
// appending: More reports true because trailing bytes are present, but
// Decode then fails with io.ErrUnexpectedEOF since there aren't enough
// bytes left to complete the value. That's treated the same as a clean
// io.EOF rather than a hard error — a truncated trailing record is exactly
// what replay is required to tolerate by stopping at the last complete
// record. Any other decode error (malformed JSON with more data behind it)
// is a genuine corruption and is returned as such.
func (r *Reader) Next() (cmd Command, start int64, length int64, err error) {
	if !r.dec.More() {
		return Command{}, 0, 0, io.EOF
	}

	start = r.cursor
	if err := r.dec.Decode(&cmd); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Command{}, 0, 0, io.EOF
		}
		return Command{}, start, 0, err
	}

	end := r.base + r.dec.InputOffset()
	length = end - start
	r.cursor = end
	return cmd, start, length, nil
}

// ReadAt decodes exactly one command from r, which must be a reader
// already positioned at the record's start offset. It's the path used to
// resolve a single index lookup: seek, then decode one record.
func ReadAt(r io.Reader) (Command, error) {
	dec := json.NewDecoder(r)
	var cmd Command
	if err := dec.Decode(&cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}
