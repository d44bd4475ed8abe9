package core

// streaming.go prepares uploaded CSV bytes for parsing without buffering the
// whole file:
//
//   - CountingReader tracks raw bytes read for the import report
//   - the UTF-8 BOM decoder strips a leading BOM (common in Windows exports)
//     and replaces ill-formed UTF-8 with U+FFFD
//
// Use WrapForImport to apply both in the correct order.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapForImport returns a reader yielding clean UTF-8 text, plus the
// counter over the raw input.
//
// Counting wraps the raw input so BytesRead matches the upload size, and
// decoding happens on top of it.
func WrapForImport(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	decoded := transform.NewReader(counter, unicode.UTF8BOM.NewDecoder())
	return decoded, counter
}
