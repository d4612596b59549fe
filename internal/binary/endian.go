package binary

import "encoding/binary"

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: MP4/M4A atoms, ID3v2 frames.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: Vorbis comments, Ogg pages, RIFF chunks, ASF objects.
	LittleEndian
)

// byteOrder returns the encoding/binary order for e.
func (e Endianness) byteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// sizeOf returns the encoded width of T in bytes.
func sizeOf[T uint8 | uint16 | uint32 | uint64]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// ReadLE reads a numeric value of type T at the given offset using little-endian byte order.
//
// Example:
//
//	length, err := binary.ReadLE[uint32](sr, offset, "vorbis comment length")
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// ReadBE reads a numeric value of type T at the given offset using big-endian byte order.
func ReadBE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadEndian reads a numeric value of type T at the given offset with specified byte order.
//
// Most code should use Read, ReadLE or ReadBE instead.
func ReadEndian[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, endian Endianness) (T, error) {
	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](buf, endian), nil
}

// Decode converts the leading bytes of buf to T. buf must hold at least
// the width of T.
func Decode[T uint8 | uint16 | uint32 | uint64](buf []byte, endian Endianness) T {
	order := endian.byteOrder()
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(buf[0])
	case uint16:
		return T(order.Uint16(buf))
	case uint32:
		return T(order.Uint32(buf))
	default:
		return T(order.Uint64(buf))
	}
}

// Encode returns val encoded in the given byte order.
func Encode[T uint8 | uint16 | uint32 | uint64](val T, endian Endianness) []byte {
	order := endian.byteOrder()
	buf := make([]byte, sizeOf[T]())
	switch v := any(val).(type) {
	case uint8:
		buf[0] = v
	case uint16:
		order.PutUint16(buf, v)
	case uint32:
		order.PutUint32(buf, v)
	case uint64:
		order.PutUint64(buf, v)
	}
	return buf
}
