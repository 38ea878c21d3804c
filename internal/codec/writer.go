package codec

import (
	"encoding/json"

	"github.com/trdthg/logkv/pkg/posio"
)

// Writer encodes commands as a stream of JSON records onto a positioned
// writer, reporting the byte range each record occupied so the caller can
// index it without a second pass over the file.
type Writer struct {
	pw *posio.Writer
	// Each command is marshaled on its own and written with no separator,
	// so records sit back to back and the byte range Write reports is
	// exactly the range a Reader reports for the same record.
}

// NewWriter wraps a positioned writer for command encoding.
func NewWriter(pw *posio.Writer) *Writer {
	return &Writer{pw: pw}
}

// Write encodes cmd and appends it to the underlying segment, returning
// the offset the record started at and its encoded length in bytes.
func (w *Writer) Write(cmd Command) (start int64, length int64, err error) {
	start = w.pw.Pos()
	b, err := json.Marshal(cmd)
	if err != nil {
		return start, 0, err
	}
	if _, err := w.pw.Write(b); err != nil {
		return start, 0, err
	}
	return start, w.pw.Pos() - start, nil
}

// Flush pushes buffered bytes to the underlying file.
func (w *Writer) Flush() error {
	return w.pw.Flush()
}

// Sync flushes buffered bytes and fsyncs the underlying file.
func (w *Writer) Sync() error {
	return w.pw.Sync()
}

// Pos returns the absolute offset of the next byte that will be written.
func (w *Writer) Pos() int64 {
	return w.pw.Pos()
}
