// Package posio wraps buffered file I/O with an explicit running byte
// offset. The command codec needs to know exactly where in a segment file
// each record starts and ends so the index can point straight at it on a
// later read, and Go's bufio types don't expose that position on their own.
package posio

import (
	"bufio"
	"io"
	"os"
)

// Writer buffers writes to a file while tracking the absolute offset of
// the next byte to be written. Every Write call advances pos by the number
// of bytes written, so callers can record a record's starting offset
// before writing it and its length as the delta afterward.
type Writer struct {
	w   *bufio.Writer
	f   *os.File
	pos int64
}

// NewWriter wraps f for buffered, position-tracked writing. f must already
// be positioned at the offset pos refers to — typically its current end
// when appending to an existing segment.
func NewWriter(f *os.File, pos int64) *Writer {
	return &Writer{w: bufio.NewWriter(f), f: f, pos: pos}
}

// Write implements io.Writer, advancing the tracked position by the number
// of bytes written.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

// Pos returns the absolute offset of the next byte that will be written.
func (w *Writer) Pos() int64 {
	return w.pos
}

// Flush pushes buffered data to the underlying file without syncing it to
// stable storage.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Sync flushes buffered data and then fsyncs the underlying file.
func (w *Writer) Sync() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.f.Sync()
}

// Reader buffers reads from a file while tracking the absolute offset of
// the next byte to be read. Seek invalidates the internal buffer so pos
// stays consistent with what a subsequent Read will return.
type Reader struct {
	r   *bufio.Reader
	f   *os.File
	pos int64
}

// NewReader wraps f for buffered, position-tracked reading starting at pos.
func NewReader(f *os.File, pos int64) *Reader {
	return &Reader{r: bufio.NewReader(f), f: f, pos: pos}
}

// Read implements io.Reader, advancing the tracked position by the number
// of bytes read.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += int64(n)
	return n, err
}

// Seek implements io.Seeker. It resets the buffered reader so that the
// next Read reflects data from the new position rather than stale
// read-ahead bytes.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	newPos, err := r.f.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	r.pos = newPos
	r.r.Reset(r.f)
	return newPos, nil
}

// Pos returns the absolute offset of the next byte that will be read.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

var _ io.ReadSeeker = (*Reader)(nil)
