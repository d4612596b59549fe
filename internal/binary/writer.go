package binary

import (
	"fmt"
	"io"
)

// SafeWriter wraps io.Writer with position tracking.
type SafeWriter struct {
	w      io.Writer
	offset int64
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{
		w:      w,
		offset: 0,
	}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// WriteZeros writes n zero bytes (padding).
func (sw *SafeWriter) WriteZeros(n int64) error {
	if n <= 0 {
		return nil
	}
	return sw.WriteBytes(make([]byte, n))
}

// CopyFrom streams exactly n bytes from r at offset off.
//
// Used to carry audio payload from the original file into the rewritten one
// without loading it into memory.
func (sw *SafeWriter) CopyFrom(r io.ReaderAt, off, n int64) error {
	if n <= 0 {
		return nil
	}
	copied, err := io.Copy(sw.w, io.NewSectionReader(r, off, n))
	sw.offset += copied
	if err != nil {
		return fmt.Errorf("copy %d bytes at offset %d: %w", n, off, err)
	}
	if copied != n {
		return fmt.Errorf("copy %d bytes at offset %d: short copy of %d bytes", n, off, copied)
	}
	return nil
}

// Write writes a value of type T in big-endian byte order.
// T must be uint8, uint16, uint32, or uint64.
func Write[T uint8 | uint16 | uint32 | uint64](sw *SafeWriter, val T) error {
	return sw.WriteBytes(Encode(val, BigEndian))
}

// WriteLE writes a value of type T in little-endian byte order.
// T must be uint8, uint16, uint32, or uint64.
func WriteLE[T uint8 | uint16 | uint32 | uint64](sw *SafeWriter, val T) error {
	return sw.WriteBytes(Encode(val, LittleEndian))
}
