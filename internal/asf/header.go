// Package asf reads and rewrites the Title and Author fields of the Content
// Description Object in ASF (WMA) files.
package asf

import (
	"bytes"
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// GUID is an object identifier in its on-disk byte order.
type GUID [16]byte

// Object identifiers used here
var (
	headerGUID             = GUID{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C}
	contentDescriptionGUID = GUID{0x33, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C}
	filePropertiesGUID     = GUID{0xA1, 0xDC, 0xAB, 0x8C, 0x47, 0xA9, 0xCF, 0x11, 0x8E, 0xE4, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}
)

const (
	// objectHeaderSize is the GUID plus the 64-bit object size.
	objectHeaderSize = 24
	// headerObjectSize adds the child count and two reserved bytes.
	headerObjectSize = objectHeaderSize + 6
	// filePropertiesSizeOffset locates the file size inside the File
	// Properties Object, after its header and the file ID GUID.
	filePropertiesSizeOffset = objectHeaderSize + 16
)

// object is a child of the Header Object held in memory.
type object struct {
	ID   GUID
	Body []byte // object data after the 24-byte object header
}

// header is the decoded Header Object.
type header struct {
	size     uint64 // declared size of the Header Object
	reserved [2]byte
	objects  []object
}

// readHeader decodes the Header Object at the start of the file.
func readHeader(sr *binary.SafeReader) (*header, error) {
	b, err := sr.Bytes(0, headerObjectSize, "ASF header object")
	if err != nil {
		return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: "file too small for ASF header"}
	}
	if !bytes.Equal(b[:16], headerGUID[:]) {
		return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: "missing ASF header object"}
	}

	h := &header{
		size:     binary.Decode[uint64](b[16:], binary.LittleEndian),
		reserved: [2]byte{b[28], b[29]},
	}
	count := binary.Decode[uint32](b[24:], binary.LittleEndian)
	if h.size < headerObjectSize || h.size > uint64(sr.Size()) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Reason: fmt.Sprintf("header object size %d does not fit file of %d bytes", h.size, sr.Size()),
		}
	}

	body, err := sr.Bytes(headerObjectSize, int64(h.size)-headerObjectSize, "ASF header objects")
	if err != nil {
		return nil, err
	}
	offset := int64(headerObjectSize)
	for i := uint32(0); i < count; i++ {
		if len(body) < objectHeaderSize {
			return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: offset, Reason: "truncated header object list"}
		}
		var id GUID
		copy(id[:], body)
		n := binary.Decode[uint64](body[16:], binary.LittleEndian)
		if n < objectHeaderSize || n > uint64(len(body)) {
			return nil, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: offset,
				Reason: fmt.Sprintf("header child of %d bytes overruns the header object", n),
			}
		}
		h.objects = append(h.objects, object{ID: id, Body: bytes.Clone(body[objectHeaderSize:n])})
		body = body[n:]
		offset += int64(n)
	}
	return h, nil
}

// find returns the index of the first child with the given ID, or -1.
func (h *header) find(id GUID) int {
	for i, o := range h.objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// encode serializes the Header Object with its children.
func (h *header) encode() []byte {
	size := uint64(headerObjectSize)
	for _, o := range h.objects {
		size += objectHeaderSize + uint64(len(o.Body))
	}

	out := make([]byte, 0, size)
	out = append(out, headerGUID[:]...)
	out = append(out, binary.Encode(size, binary.LittleEndian)...)
	out = append(out, binary.Encode(uint32(len(h.objects)), binary.LittleEndian)...)
	out = append(out, h.reserved[:]...)
	for _, o := range h.objects {
		out = append(out, o.ID[:]...)
		out = append(out, binary.Encode(uint64(objectHeaderSize+len(o.Body)), binary.LittleEndian)...)
		out = append(out, o.Body...)
	}
	return out
}
