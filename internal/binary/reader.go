// Package binary provides bounds-checked binary reading and offset-tracking
// writing primitives shared by the tag codecs.
package binary

import (
	"fmt"
	"io"
)

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (file size: %d) while reading %s",
			sr.path, off, sr.size, what)
	}

	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
			sr.path, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// Bytes reads n bytes at off into a freshly allocated slice.
func (sr *SafeReader) Bytes(off, n int64, what string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%s: negative length %d while reading %s", sr.path, n, what)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// Section returns a reader over [off, off+n) of the underlying data, clamped
// to the reader's size.
func (sr *SafeReader) Section(off, n int64) *io.SectionReader {
	if off > sr.size {
		off = sr.size
	}
	if off+n > sr.size {
		n = sr.size - off
	}
	return io.NewSectionReader(sr.r, off, n)
}

// Read reads a big-endian value of type T from the given offset.
// T must be uint8, uint16, uint32, or uint64.
func Read[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}
